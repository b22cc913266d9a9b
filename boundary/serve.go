package boundary

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"

	"go.uber.org/zap"

	"fontwrench/document"
)

// Serve runs the message loop: line-delimited JSON requests in, responses
// and push events out. Requests are processed strictly one at a time in
// arrival order, which is the transport-level serialization the components
// below rely on. The loop survives malformed lines and failed requests and
// ends on EOF or context cancellation.
func Serve(ctx context.Context, host document.Host, log *zap.Logger, r io.Reader, w io.Writer) error {
	if log == nil {
		log = zap.NewNop()
	}

	enc := json.NewEncoder(w)
	adapter := New(host, log, func(msg any) {
		if err := enc.Encode(msg); err != nil {
			log.Error("Unable to write response", zap.Error(err))
		}
	})
	cancel := adapter.Subscribe()
	defer cancel()

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	for scanner.Scan() {
		if err := ctx.Err(); err != nil {
			return err
		}
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		var req Request
		if err := json.Unmarshal(line, &req); err != nil {
			log.Warn("Dropping malformed request", zap.Error(err))
			continue
		}
		if err := adapter.Handle(ctx, req); err != nil {
			// request failures are reported and the loop keeps serving
			log.Error("Request failed", zap.String("type", req.Type), zap.Error(err))
		}
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("transport read failed: %w", err)
	}
	return nil
}
