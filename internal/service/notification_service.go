package service

import (
	"context"

	"vetlab/internal/model"
	"vetlab/internal/repository"
	ws "vetlab/internal/websocket"
)

// NotificationService stores in-app messages of one domain and pushes new
// ones to the clients signed in to it.
type NotificationService struct {
	domain model.Domain
	store  repository.NotificationRepository
	hub    Broadcaster
}

func NewNotificationService(domain model.Domain, store repository.NotificationRepository, hub Broadcaster) *NotificationService {
	return &NotificationService{domain: domain, store: store, hub: orNop(hub)}
}

func (s *NotificationService) List(ctx context.Context) ([]model.Notification, error) {
	return s.store.GetNotifications(ctx)
}

// Unread counts notifications not yet read.
func (s *NotificationService) Unread(ctx context.Context) (int, error) {
	all, err := s.store.GetNotifications(ctx)
	if err != nil {
		return 0, err
	}
	n := 0
	for _, item := range all {
		if !item.Read {
			n++
		}
	}
	return n, nil
}

func (s *NotificationService) Create(ctx context.Context, in model.NotificationInput) (*model.Notification, error) {
	n, err := s.store.CreateNotification(ctx, in)
	if err != nil {
		return nil, err
	}
	if n != nil {
		s.hub.Broadcast(s.domain, ws.EventNotification, n)
	}
	return n, nil
}

func (s *NotificationService) Toggle(ctx context.Context, id string) (*model.Notification, error) {
	return s.store.ToggleNotificationRead(ctx, id)
}

func (s *NotificationService) MarkAllRead(ctx context.Context) (int, error) {
	return s.store.MarkAllNotificationsRead(ctx)
}

func (s *NotificationService) Delete(ctx context.Context, id string) (bool, error) {
	return s.store.DeleteNotification(ctx, id)
}
