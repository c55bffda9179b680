package worker

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/Hikikomori041/techno-web-groupe10-sub000/internal/metrics"
)

// カート明細を1行消すだけの依存
type CartLineDeleter interface {
	DeleteByID(ctx context.Context, cartItemID int64) error
}

// CartCleaner は壊れたカート明細（商品削除済みなど）をバックグラウンドで消す。
// Scheduleは呼び出し側をブロックしない。キューが満杯なら捨ててログに残す。
type CartCleaner struct {
	deleter CartLineDeleter
	log     *slog.Logger
	queue   chan int64
	timeout time.Duration

	startOnce sync.Once
	stopOnce  sync.Once
	mu        sync.RWMutex
	closed    bool
	cancel    context.CancelFunc
	done      chan struct{}
}

func NewCartCleaner(deleter CartLineDeleter, queueSize int, log *slog.Logger) *CartCleaner {
	if queueSize < 1 {
		queueSize = 1
	}
	return &CartCleaner{
		deleter: deleter,
		log:     log,
		queue:   make(chan int64, queueSize),
		timeout: 5 * time.Second,
		done:    make(chan struct{}),
	}
}

// Start はワーカーgoroutineを起動する。2回目以降は何もしない
func (w *CartCleaner) Start(ctx context.Context) {
	w.startOnce.Do(func() {
		ctx, w.cancel = context.WithCancel(ctx)
		go w.run(ctx)
	})
}

// Stop はキューに残っている分を処理してから止まる
func (w *CartCleaner) Stop() {
	w.stopOnce.Do(func() {
		// 未起動でも残りを処理できるように
		w.Start(context.Background())
		w.mu.Lock()
		w.closed = true
		close(w.queue)
		w.mu.Unlock()
		<-w.done
		if w.cancel != nil {
			w.cancel()
		}
	})
}

// Schedule はStop後に呼ばれたら何もしない（dropped として数える）
func (w *CartCleaner) Schedule(cartItemIDs ...int64) {
	w.mu.RLock()
	defer w.mu.RUnlock()

	if w.closed {
		metrics.CartCleanup.WithLabelValues("dropped").Add(float64(len(cartItemIDs)))
		w.log.Warn("cart cleanup scheduled after stop", "count", len(cartItemIDs))
		return
	}
	for _, id := range cartItemIDs {
		select {
		case w.queue <- id:
		default:
			metrics.CartCleanup.WithLabelValues("dropped").Inc()
			w.log.Warn("cart cleanup queue full", "cart_item_id", id)
		}
	}
}

func (w *CartCleaner) run(ctx context.Context) {
	defer close(w.done)
	for id := range w.queue {
		w.deleteOne(ctx, id)
	}
}

func (w *CartCleaner) deleteOne(ctx context.Context, id int64) {
	ctx, cancel := context.WithTimeout(ctx, w.timeout)
	defer cancel()

	if err := w.deleter.DeleteByID(ctx, id); err != nil {
		metrics.CartCleanup.WithLabelValues("failed").Inc()
		w.log.Error("cart cleanup failed", "cart_item_id", id, "error", err)
		return
	}
	metrics.CartCleanup.WithLabelValues("deleted").Inc()
	w.log.Debug("cart line removed", "cart_item_id", id)
}
