package cmrunner

import (
	"sync"
	"testing"
	"time"

	"github.com/edge-gateway/messageproxy/pkg/downloader"
	"github.com/edge-gateway/messageproxy/pkg/muxchannel"
	"github.com/edge-gateway/messageproxy/pkg/securechannel"
	"github.com/edge-gateway/messageproxy/pkg/smwire"
)

type fakeTransport struct {
	mu  sync.Mutex
	buf []byte
}

func (f *fakeTransport) Write(p []byte) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.buf = append(f.buf, p...)
	return len(p), nil
}

func (f *fakeTransport) len() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.buf)
}

type fakeHandler struct {
	mu   sync.Mutex
	sent [][]byte
}

func (f *fakeHandler) OnConnected()    {}
func (f *fakeHandler) OnDisconnected() {}

func (f *fakeHandler) Send(payload []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, payload)
	return nil
}

func (f *fakeHandler) Receive() ([]byte, error) {
	select {}
}

func (f *fakeHandler) sentCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.sent)
}

func newTestRunner() (*Runner, *fakeTransport, *fakeHandler) {
	transport := &fakeTransport{}
	channel := muxchannel.New(1, transport, &sync.Mutex{})
	handler := &fakeHandler{}
	r := New(channel, &securechannel.SecureChannel{}, handler, nil, nil, nil)
	return r, transport, handler
}

func TestHandleOpenMessage_ClockSyncRespondsLocallyWithoutForwarding(t *testing.T) {
	r, transport, handler := newTestRunner()

	r.handleOpenMessage(smwire.BuildClockSyncRequest())

	if handler.sentCount() != 0 {
		t.Fatalf("expected clock sync request not forwarded to inner handler, got %d sends", handler.sentCount())
	}
	if transport.len() == 0 {
		t.Fatalf("expected a clock sync response to be written to the open channel")
	}
}

func TestHandleOpenMessage_ForwardsEverythingElse(t *testing.T) {
	r, transport, handler := newTestRunner()

	payload := smwire.BuildAlert(7, "disk pressure")
	r.handleOpenMessage(payload)

	if handler.sentCount() != 1 {
		t.Fatalf("expected exactly one forwarded message, got %d", handler.sentCount())
	}
	if transport.len() != 0 {
		t.Fatalf("expected nothing written back to the open channel for a forwarded message")
	}
}

func TestHandleSecureMessage_ForwardsNonImageContentRequest(t *testing.T) {
	r, _, handler := newTestRunner()

	payload := smwire.BuildAlert(1, "boom")
	r.handleSecureMessage(payload)

	if handler.sentCount() != 1 {
		t.Fatalf("expected non image-content-request payload forwarded, got %d sends", handler.sentCount())
	}
}

func TestIsShutdown_ReflectsStopCall(t *testing.T) {
	r, _, _ := newTestRunner()

	if r.isShutdown() {
		t.Fatalf("runner should not report shutdown before Stop")
	}

	r.shutdownOnce.Do(func() { close(r.shutdownCh) })

	if !r.isShutdown() {
		t.Fatalf("runner should report shutdown after shutdownCh is closed")
	}
}

func TestSleepOrShutdown_ReturnsFalseWhenShutdownFires(t *testing.T) {
	r, _, _ := newTestRunner()

	done := make(chan bool, 1)
	go func() { done <- r.sleepOrShutdown(time.Minute) }()

	time.Sleep(10 * time.Millisecond)
	close(r.shutdownCh)

	select {
	case ok := <-done:
		if ok {
			t.Fatalf("expected sleepOrShutdown to return false when shutdown fires first")
		}
	case <-time.After(time.Second):
		t.Fatalf("sleepOrShutdown did not observe shutdown in time")
	}
}

func TestRunDownloadJob_ReportsDownloadFailureAsContentError(t *testing.T) {
	r, _, _ := newTestRunner()

	dl, err := downloader.New(t.TempDir(), nil)
	if err != nil {
		t.Fatalf("downloader.New: %v", err)
	}
	r.downloader = dl

	info := r.runDownloadJob(smwire.ImageContentRequest{RequestID: 1, URL: "file:///does/not/exist"})

	if info.Err == nil {
		t.Fatalf("expected a ContentError for a download that can never succeed")
	}
	if info.RequestID != 1 {
		t.Fatalf("expected RequestID to be preserved on failure, got %d", info.RequestID)
	}
}
