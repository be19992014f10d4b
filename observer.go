package mailverify

import "go.uber.org/zap"

// ChunkInfo describes a chunk of a bulk run.
type ChunkInfo struct {
	Index     int // zero-based chunk index
	Chunks    int // total number of chunks
	Size      int // addresses in this chunk
	Processed int // addresses processed so far, this chunk included once done
	Total     int // addresses in the run
	Progress  int // percentage processed, 0-100
}

// Observer receives bulk run notifications. Implementations must be safe
// for concurrent use: AttemptFailed is called from pool workers.
type Observer interface {
	ChunkStarted(info ChunkInfo)
	ChunkDone(info ChunkInfo)
	AttemptFailed(address string, attempt int, err error, willRetry bool)
}

// NopObserver ignores all notifications.
type NopObserver struct{}

func (NopObserver) ChunkStarted(ChunkInfo)                 {}
func (NopObserver) ChunkDone(ChunkInfo)                    {}
func (NopObserver) AttemptFailed(string, int, error, bool) {}

// ZapObserver logs bulk progress to a zap logger.
type ZapObserver struct {
	logger *zap.Logger
}

// NewZapObserver creates an Observer that logs progress at info level
// and failed attempts at warn level.
func NewZapObserver(logger *zap.Logger) *ZapObserver {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ZapObserver{logger: logger}
}

func (o *ZapObserver) ChunkStarted(info ChunkInfo) {
	o.logger.Debug("Batch chunk started",
		zap.Int("chunk", info.Index+1),
		zap.Int("chunks", info.Chunks),
		zap.Int("size", info.Size))
}

func (o *ZapObserver) ChunkDone(info ChunkInfo) {
	o.logger.Info("Batch processing progress",
		zap.Int("chunk", info.Index+1),
		zap.Int("chunks", info.Chunks),
		zap.Int("processed", info.Processed),
		zap.Int("total", info.Total),
		zap.Int("progress", info.Progress))
}

func (o *ZapObserver) AttemptFailed(address string, attempt int, err error, willRetry bool) {
	o.logger.Warn("Validation attempt failed",
		zap.String("email", address),
		zap.Int("attempt", attempt),
		zap.Bool("retry", willRetry),
		zap.Error(err))
}
