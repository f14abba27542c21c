package server

import (
	"fmt"
	"net/http"
	"time"

	"gocv.io/x/gocv"

	"github.com/ayusman/kalari/internal/capture"
)

// streamInterval paces the MJPEG feed at roughly the active capture rate.
const streamInterval = 66 * time.Millisecond

// StreamHandler serves the camera as an MJPEG stream so the browser can
// show players their own hand while they gesture.
type StreamHandler struct {
	camera capture.Camera
}

// NewStreamHandler creates a StreamHandler over the given camera.
func NewStreamHandler(camera capture.Camera) *StreamHandler {
	return &StreamHandler{camera: camera}
}

// ServeHTTP writes multipart JPEG parts until the client disconnects.
func (h *StreamHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	w.Header().Set("Content-Type", "multipart/x-mixed-replace; boundary=frame")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	flusher, _ := w.(http.Flusher)

	for {
		select {
		case <-r.Context().Done():
			return
		default:
		}

		if err := h.writeFrame(w); err == nil && flusher != nil {
			flusher.Flush()
		}

		time.Sleep(streamInterval)
	}
}

// writeFrame grabs one frame, JPEG-encodes it and writes one multipart
// part. Read and encode failures skip the frame; the stream carries on.
func (h *StreamHandler) writeFrame(w http.ResponseWriter) error {
	frame, err := h.camera.ReadFrame()
	if err != nil {
		return err
	}

	buf, err := gocv.IMEncode(".jpg", *frame)
	frame.Close()
	if err != nil {
		return err
	}
	defer buf.Close()

	if _, err := fmt.Fprintf(w,
		"--frame\r\nContent-Type: image/jpeg\r\nContent-Length: %d\r\n\r\n",
		buf.Len()); err != nil {
		return err
	}
	if _, err := w.Write(buf.GetBytes()); err != nil {
		return err
	}
	_, err = fmt.Fprint(w, "\r\n")
	return err
}
