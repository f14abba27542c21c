package detector

import (
	"bufio"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"sync"
	"time"

	"gocv.io/x/gocv"
)

// idleShutdown is how long the Python helper may sit unused before it is
// stopped to free its memory. The next Detect restarts it transparently.
const idleShutdown = 30 * time.Second

// handServiceScript is the MediaPipe helper run as a subprocess. Frames go
// down its stdin as length-prefixed JPEGs; landmark sets come back as one
// JSON line per frame.
const handServiceScript = "hand_service.py"

// MediaPipeDetector runs MediaPipe hand tracking in a Python subprocess.
// The process starts lazily on first use and is restarted on demand after
// an idle shutdown.
type MediaPipeDetector struct {
	cfg Config

	mu   sync.Mutex
	proc *handService
	idle *time.Timer
}

// handService is the running helper process and its pipes.
type handService struct {
	cmd    *exec.Cmd
	frames io.WriteCloser
	result *bufio.Reader
}

// NewMediaPipeDetector verifies the helper script is installed and returns
// a detector. No process is started until the first Detect call.
func NewMediaPipeDetector(cfg Config) (*MediaPipeDetector, error) {
	if locateFile(filepath.Join("scripts", handServiceScript)) == "" {
		return nil, fmt.Errorf("%s not installed", handServiceScript)
	}
	return &MediaPipeDetector{cfg: cfg}, nil
}

// Detect sends the frame to the helper and decodes the hands it reports,
// dropping low-confidence detections and truncating to MaxHands.
func (d *MediaPipeDetector) Detect(frame *gocv.Mat) ([]HandLandmarks, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	proc, err := d.service()
	if err != nil {
		return nil, err
	}

	if err := proc.sendFrame(frame); err != nil {
		return nil, err
	}

	line, err := proc.result.ReadString('\n')
	if err != nil {
		return nil, fmt.Errorf("read hand service response: %w", err)
	}

	var resp struct {
		Hands []wireHand `json:"hands"`
	}
	if err := json.Unmarshal([]byte(line), &resp); err != nil {
		return nil, fmt.Errorf("decode hand service response: %w", err)
	}

	hands := make([]HandLandmarks, 0, len(resp.Hands))
	for _, h := range resp.Hands {
		if h.Score < d.cfg.MinConfidence {
			continue
		}
		hands = append(hands, h.landmarks())
		if d.cfg.MaxHands > 0 && len(hands) >= d.cfg.MaxHands {
			break
		}
	}

	d.scheduleIdleStop()
	return hands, nil
}

// Close stops the helper process if it is running.
func (d *MediaPipeDetector) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.stop()
}

// service returns the running helper, starting it if needed.
func (d *MediaPipeDetector) service() (*handService, error) {
	if d.proc != nil {
		return d.proc, nil
	}

	script := locateFile(filepath.Join("scripts", handServiceScript))
	if script == "" {
		return nil, fmt.Errorf("%s not installed", handServiceScript)
	}

	python := locateFile(filepath.Join("venv", "bin", "python"))
	if python == "" {
		python = "python3"
	}

	cmd := exec.Command(python, script)
	cmd.Stderr = os.Stderr

	frames, err := cmd.StdinPipe()
	if err != nil {
		return nil, fmt.Errorf("hand service stdin: %w", err)
	}
	out, err := cmd.StdoutPipe()
	if err != nil {
		return nil, fmt.Errorf("hand service stdout: %w", err)
	}

	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("start hand service: %w", err)
	}

	d.proc = &handService{
		cmd:    cmd,
		frames: frames,
		result: bufio.NewReader(out),
	}
	return d.proc, nil
}

// stop closes the helper's stdin and reaps the process. Callers hold d.mu.
func (d *MediaPipeDetector) stop() error {
	if d.proc == nil {
		return nil
	}
	if d.idle != nil {
		d.idle.Stop()
		d.idle = nil
	}

	d.proc.frames.Close()
	err := d.proc.cmd.Wait()
	d.proc = nil
	return err
}

func (d *MediaPipeDetector) scheduleIdleStop() {
	if d.idle != nil {
		d.idle.Stop()
	}
	d.idle = time.AfterFunc(idleShutdown, func() {
		d.mu.Lock()
		defer d.mu.Unlock()
		d.stop()
	})
}

// sendFrame writes the frame as a 4-byte big-endian length followed by
// JPEG bytes, the framing the helper script expects.
func (s *handService) sendFrame(frame *gocv.Mat) error {
	buf, err := gocv.IMEncode(".jpg", *frame)
	if err != nil {
		return fmt.Errorf("encode frame: %w", err)
	}
	defer buf.Close()

	jpeg := buf.GetBytes()
	var header [4]byte
	binary.BigEndian.PutUint32(header[:], uint32(len(jpeg)))

	if _, err := s.frames.Write(header[:]); err != nil {
		return fmt.Errorf("write frame header: %w", err)
	}
	if _, err := s.frames.Write(jpeg); err != nil {
		return fmt.Errorf("write frame: %w", err)
	}
	return nil
}

// locateFile resolves a helper file relative to the working directory, the
// binary's directory and the per-user install root, in that order.
func locateFile(rel string) string {
	var execDir string
	if execPath, err := os.Executable(); err == nil {
		execDir = filepath.Dir(execPath)
	}

	candidates := []string{
		rel,
		filepath.Join("..", rel),
		filepath.Join(execDir, rel),
		filepath.Join(os.Getenv("HOME"), ".kalari", rel),
	}

	for _, path := range candidates {
		if _, err := os.Stat(path); err == nil {
			if abs, err := filepath.Abs(path); err == nil {
				return abs
			}
			return path
		}
	}
	return ""
}

// wireHand is one hand as emitted by the helper script.
type wireHand struct {
	Points     []wirePoint `json:"points"`
	Handedness string      `json:"handedness"`
	Score      float64     `json:"score"`
}

type wirePoint struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

func (h wireHand) landmarks() HandLandmarks {
	lm := HandLandmarks{
		Handedness: h.Handedness,
		Score:      h.Score,
	}
	for i := 0; i < NumLandmarks && i < len(h.Points); i++ {
		lm.Points[i] = Point3D(h.Points[i])
	}
	return lm
}
