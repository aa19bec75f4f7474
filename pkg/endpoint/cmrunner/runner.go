package cmrunner

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/edge-gateway/messageproxy/pkg/downloader"
	"github.com/edge-gateway/messageproxy/pkg/imagepipeline"
	"github.com/edge-gateway/messageproxy/pkg/innerclient"
	"github.com/edge-gateway/messageproxy/pkg/innerframe"
	"github.com/edge-gateway/messageproxy/pkg/muxchannel"
	"github.com/edge-gateway/messageproxy/pkg/securechannel"
	"github.com/edge-gateway/messageproxy/pkg/smwire"
)

// ConnectionTimeout is the backoff between secure-channel (re)connect
// attempts (spec.md §4.6 cConnectionTimeout).
const ConnectionTimeout = 3 * time.Second

// DownloadJobTimeout bounds one end-to-end image download + unpack job.
const DownloadJobTimeout = 2 * time.Minute

const aosCodeDownloadFailed = 2

// Runner is the CM Endpoint Runner (spec.md §4.6).
type Runner struct {
	openChannel   *muxchannel.Channel
	secureChannel *securechannel.SecureChannel
	handler       innerclient.Handler
	downloader    *downloader.Downloader
	pipeline      *imagepipeline.Pipeline
	logger        *slog.Logger

	shutdownOnce sync.Once
	shutdownCh   chan struct{}
	wg           sync.WaitGroup
}

// New constructs a Runner. handler is typically an *innerclient.Client
// built with innerclient.NewCM.
func New(openChannel *muxchannel.Channel, secureChannel *securechannel.SecureChannel, handler innerclient.Handler, dl *downloader.Downloader, pipeline *imagepipeline.Pipeline, logger *slog.Logger) *Runner {
	if logger == nil {
		logger = slog.Default()
	}
	return &Runner{
		openChannel:   openChannel,
		secureChannel: secureChannel,
		handler:       handler,
		downloader:    dl,
		pipeline:      pipeline,
		logger:        logger.With("component", "cmrunner"),
		shutdownCh:    make(chan struct{}),
	}
}

// Start launches the open-side and secure-side tasks.
func (r *Runner) Start() {
	r.wg.Add(2)
	go r.runOpenSide()
	go r.runSecureSide()
}

// Stop shuts the runner down: closes both channels, disconnects the
// inner handler, and waits for every task (including any in-flight
// download job) to exit.
func (r *Runner) Stop() {
	r.shutdownOnce.Do(func() {
		close(r.shutdownCh)
		_ = r.openChannel.Close()
		_ = r.secureChannel.Close()
	})
	r.handler.OnDisconnected()
	r.wg.Wait()
}

func (r *Runner) isShutdown() bool {
	select {
	case <-r.shutdownCh:
		return true
	default:
		return false
	}
}

func (r *Runner) sleepOrShutdown(d time.Duration) bool {
	select {
	case <-time.After(d):
		return true
	case <-r.shutdownCh:
		return false
	}
}

// runOpenSide reads SMOutgoingMessages frames off the open channel,
// answering clock-sync requests locally and forwarding everything else
// to the inner CM handler (spec.md §4.6 "Open side").
func (r *Runner) runOpenSide() {
	defer r.wg.Done()

	for {
		msg, err := innerframe.ReadMessage(r.openChannel)
		if err != nil {
			if !r.isShutdown() {
				r.logger.Warn("open channel read failed", "error", err)
			}
			return
		}
		r.handleOpenMessage(msg)
	}
}

func (r *Runner) handleOpenMessage(payload []byte) {
	if smwire.HasClockSyncRequest(payload) {
		resp := smwire.BuildClockSyncResponse(time.Now())
		if err := innerframe.WriteMessage(r.openChannel, resp); err != nil {
			r.logger.Warn("clock sync response write failed", "error", err)
		}
		return
	}

	if err := r.handler.Send(payload); err != nil {
		r.logger.Warn("forwarding open-side message to inner CM failed", "error", err)
	}
}

// runSecureSide drives the connect loop for the secure channel: on
// each successful handshake it notifies the inner handler and runs a
// read pump and a write pump until either fails, then backs off and
// reconnects (spec.md §4.6 "Secure side").
func (r *Runner) runSecureSide() {
	defer r.wg.Done()

	for {
		if r.isShutdown() {
			return
		}

		if err := r.secureChannel.Connect(); err != nil {
			r.logger.Warn("secure channel connect failed, retrying", "error", err, "retry_in", ConnectionTimeout)
			if !r.sleepOrShutdown(ConnectionTimeout) {
				return
			}
			continue
		}

		r.logger.Info("secure channel connected")
		r.handler.OnConnected()

		var pumpWG sync.WaitGroup
		pumpWG.Add(2)
		go func() { defer pumpWG.Done(); r.readPump() }()
		go func() { defer pumpWG.Done(); r.writePump() }()
		pumpWG.Wait()

		_ = r.secureChannel.Close()

		if r.isShutdown() {
			return
		}
		if !r.sleepOrShutdown(ConnectionTimeout) {
			return
		}
	}
}

func (r *Runner) readPump() {
	for {
		msg, err := innerframe.ReadMessage(r.secureChannel)
		if err != nil {
			if !r.isShutdown() {
				r.logger.Warn("secure channel read failed", "error", err)
			}
			return
		}
		r.handleSecureMessage(msg)
	}
}

func (r *Runner) handleSecureMessage(payload []byte) {
	out, err := smwire.ParseOutgoing(payload)
	if err == nil && out.Kind == smwire.OutgoingImageContentRequest && out.ImageContentRequest != nil {
		r.spawnDownload(*out.ImageContentRequest)
		return
	}

	if err := r.handler.Send(payload); err != nil {
		r.logger.Warn("forwarding secure-side message to inner CM failed", "error", err)
	}
}

func (r *Runner) writePump() {
	for {
		payload, err := r.handler.Receive()
		if err != nil {
			return
		}
		if err := innerframe.WriteMessage(r.secureChannel, payload); err != nil {
			r.logger.Warn("secure channel write failed", "error", err)
			return
		}
	}
}

// spawnDownload runs one image download/unpack job asynchronously and
// reports the result back through the secure channel (spec.md §4.6,
// §4.8, §4.9), never blocking the read pump.
func (r *Runner) spawnDownload(req smwire.ImageContentRequest) {
	r.wg.Add(1)
	go func() {
		defer r.wg.Done()
		info := r.runDownloadJob(req)
		r.emitContentInfo(info)
	}()
}

func (r *Runner) runDownloadJob(req smwire.ImageContentRequest) *imagepipeline.ContentInfo {
	ctx, cancel := context.WithTimeout(context.Background(), DownloadJobTimeout)
	defer cancel()

	localPath, err := r.downloader.Download(ctx, req.URL)
	if err != nil {
		return &imagepipeline.ContentInfo{
			RequestID: req.RequestID,
			Err:       &imagepipeline.ContentError{AOSCode: aosCodeDownloadFailed, Message: err.Error()},
		}
	}

	return r.pipeline.Process(req.RequestID, localPath)
}

func (r *Runner) emitContentInfo(info *imagepipeline.ContentInfo) {
	var infoPayload []byte
	if info.Err != nil {
		infoPayload = smwire.BuildContentInfoFailure(info.RequestID, info.Err.AOSCode, info.Err.Message)
	} else {
		files := make([]smwire.ImageFileEntry, len(info.Files))
		for i, f := range info.Files {
			files[i] = smwire.ImageFileEntry{RelativePath: f.RelativePath, SHA256: f.SHA256, Size: f.Size}
		}
		infoPayload = smwire.BuildContentInfoSuccess(info.RequestID, files)
	}

	if err := innerframe.WriteMessage(r.secureChannel, smwire.BuildImageContentInfo(infoPayload)); err != nil {
		r.logger.Warn("image_content_info write failed", "request_id", info.RequestID, "error", err)
		return
	}

	if info.Err != nil {
		return
	}

	for _, part := range info.Contents {
		partPayload := smwire.BuildImageContentPart(part.RequestID, part.RelativePath, part.PartsCount, part.Part, part.Data)
		if err := innerframe.WriteMessage(r.secureChannel, smwire.BuildImageContent(partPayload)); err != nil {
			r.logger.Warn("image_content write failed", "request_id", info.RequestID, "error", err)
			return
		}
	}
}
