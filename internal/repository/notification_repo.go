package repository

import (
	"context"
	"strings"
	"time"

	"vetlab/internal/model"
)

type notificationStore[D any] struct {
	store         *documentStore[D]
	notifications func(*D) *[]model.Notification
	opts          *options
}

func (r *notificationStore[D]) GetNotifications(ctx context.Context) ([]model.Notification, error) {
	var out []model.Notification
	err := r.store.View(ctx, func(doc *D) error {
		out = collect(*r.notifications(doc), nil, identity[model.Notification],
			func(n model.Notification) time.Time { return n.CreatedAt })
		return nil
	})
	return out, err
}

func (r *notificationStore[D]) CreateNotification(ctx context.Context, in model.NotificationInput) (*model.Notification, error) {
	if strings.TrimSpace(in.Title) == "" {
		return nil, missing("title")
	}
	switch in.Type {
	case model.NotificationInfo, model.NotificationSuccess, model.NotificationWarning, model.NotificationError:
	default:
		in.Type = model.NotificationInfo
	}

	n := model.Notification{
		ID:        r.opts.newID(),
		Title:     in.Title,
		Message:   in.Message,
		Type:      in.Type,
		CreatedAt: r.opts.timestamp(),
	}
	err := r.store.Update(ctx, func(doc *D) (bool, error) {
		list := r.notifications(doc)
		*list = append(*list, n)
		return true, nil
	})
	if err != nil {
		return nil, err
	}
	return &n, nil
}

func (r *notificationStore[D]) ToggleNotificationRead(ctx context.Context, id string) (*model.Notification, error) {
	var toggled *model.Notification
	err := r.store.Update(ctx, func(doc *D) (bool, error) {
		list := *r.notifications(doc)
		i := indexOf(list, func(n model.Notification) bool { return n.ID == id })
		if i < 0 {
			return false, nil
		}
		list[i].Read = !list[i].Read
		n := list[i]
		toggled = &n
		return true, nil
	})
	return toggled, err
}

// MarkAllNotificationsRead returns how many notifications changed state.
func (r *notificationStore[D]) MarkAllNotificationsRead(ctx context.Context) (int, error) {
	var count int
	err := r.store.Update(ctx, func(doc *D) (bool, error) {
		list := *r.notifications(doc)
		for i := range list {
			if !list[i].Read {
				list[i].Read = true
				count++
			}
		}
		return count > 0, nil
	})
	return count, err
}

func (r *notificationStore[D]) DeleteNotification(ctx context.Context, id string) (bool, error) {
	var removed bool
	err := r.store.Update(ctx, func(doc *D) (bool, error) {
		removed = removeWhere(r.notifications(doc), func(n model.Notification) bool { return n.ID == id }) > 0
		return removed, nil
	})
	return removed && err == nil, err
}
