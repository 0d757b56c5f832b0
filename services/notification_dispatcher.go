package services

import (
	"context"
	"fmt"
	"log"
	"slices"
	"sync"
	"time"

	"cardifyAPI/internal/notification"
	"cardifyAPI/internal/store"
)

type PushNotificationProvider interface {
	SendPush(ctx context.Context, tokens []string, title, body string, data map[string]string) error
}

// Notifier raises user-facing toasts.
type Notifier interface {
	Notify(ctx context.Context, toast notification.Toast)
}

const recentToastLimit = 50

// NotificationDispatcher keeps the latest toasts for clients to poll and
// fans them out to push devices through a worker pool.
type NotificationDispatcher struct {
	pushProvider PushNotificationProvider
	workers      int
	jobQueue     chan notification.Toast
	stopChan     chan struct{}
	stopOnce     sync.Once
	wg           sync.WaitGroup

	mu     sync.RWMutex
	recent []notification.Toast
	tokens []string
}

func NewNotificationDispatcher(workers int, tokens []string) *NotificationDispatcher {
	if workers <= 0 {
		workers = 1
	}
	d := &NotificationDispatcher{
		workers:  workers,
		jobQueue: make(chan notification.Toast, 100),
		stopChan: make(chan struct{}),
		tokens:   slices.Clone(tokens),
	}

	d.startWorkers()
	return d
}

// SetPushProvider injects the FCM provider from main.go.
func (d *NotificationDispatcher) SetPushProvider(provider PushNotificationProvider) {
	d.mu.Lock()
	d.pushProvider = provider
	d.mu.Unlock()
}

func (d *NotificationDispatcher) RegisterDevice(token string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if !slices.Contains(d.tokens, token) {
		d.tokens = append(d.tokens, token)
	}
}

func (d *NotificationDispatcher) startWorkers() {
	for i := 0; i < d.workers; i++ {
		d.wg.Add(1)
		go d.worker(i)
	}
}

func (d *NotificationDispatcher) worker(id int) {
	defer d.wg.Done()
	for {
		select {
		case toast := <-d.jobQueue:
			d.processJob(toast)
		case <-d.stopChan:
			return
		}
	}
}

func (d *NotificationDispatcher) processJob(toast notification.Toast) {
	d.mu.RLock()
	provider := d.pushProvider
	tokens := slices.Clone(d.tokens)
	d.mu.RUnlock()

	if provider == nil || len(tokens) == 0 {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	data := map[string]string{"variant": string(toast.Variant), "toastId": toast.ID}
	if err := provider.SendPush(ctx, tokens, toast.Title, toast.Description, data); err != nil {
		log.Printf("Push failed for toast %s: %v", toast.ID, err)
	}
}

// Notify records the toast and queues it for push delivery.
func (d *NotificationDispatcher) Notify(ctx context.Context, toast notification.Toast) {
	if toast.ID == "" {
		toast.ID = store.NewID("toast")
	}
	if toast.Variant == "" {
		toast.Variant = notification.VariantDefault
	}
	if toast.CreatedAt.IsZero() {
		toast.CreatedAt = time.Now()
	}

	d.mu.Lock()
	d.recent = append([]notification.Toast{toast}, d.recent...)
	if len(d.recent) > recentToastLimit {
		d.recent = d.recent[:recentToastLimit]
	}
	hasPush := d.pushProvider != nil && len(d.tokens) > 0
	d.mu.Unlock()

	if !hasPush {
		return
	}

	select {
	case d.jobQueue <- toast:
	case <-ctx.Done():
		log.Printf("Failed to queue toast %s: %v", toast.ID, ctx.Err())
	case <-d.stopChan:
	case <-time.After(5 * time.Second):
		log.Printf("Failed to queue toast %s: queue full", toast.ID)
	}
}

// Recent returns the latest toasts, newest first.
func (d *NotificationDispatcher) Recent() []notification.Toast {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return slices.Clone(d.recent)
}

func (d *NotificationDispatcher) Stop() {
	d.stopOnce.Do(func() {
		log.Println("Stopping notification dispatcher...")
		close(d.stopChan)
		d.wg.Wait()
		log.Println("Notification dispatcher stopped")
	})
}

func success(description string) notification.Toast {
	return notification.Toast{Title: "Success!", Description: description}
}

func destructive(title, description string) notification.Toast {
	return notification.Toast{Title: title, Description: description, Variant: notification.VariantDestructive}
}

func notificationLogEntry(message string) notification.Toast {
	return notification.Toast{
		Title:       "Log Entry Added",
		Description: fmt.Sprintf("\"%s\" was added to the ticket's log.", message),
	}
}

func notificationPayment(name string, amount float64) notification.Toast {
	return notification.Toast{
		Title:       "Payment Recorded",
		Description: fmt.Sprintf("Payment of $%.2f recorded for %s. Subscription renewed.", amount, name),
	}
}
