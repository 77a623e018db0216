// Package chathub coordinates live connections: presence announcements,
// joining the two-person group of a thread, and routing new messages to
// the room, to a notification, or nowhere.
package chathub

import (
	"context"
	"errors"
	"log"
	"time"

	"lovechat/backend/internal/apperr"
	"lovechat/backend/internal/config"
	"lovechat/backend/internal/localization"
	"lovechat/backend/internal/models"
	"lovechat/backend/internal/presence"
	"lovechat/backend/internal/storage"
	"lovechat/backend/internal/thread"
)

// Hub handles connect, send and disconnect for every client. Its methods
// are safe for concurrent use; each connection calls them from its own
// read pump.
type Hub struct {
	Storage   storage.Storage
	Threads   *thread.Service
	Presence  *presence.Tracker
	Clients   *Registry
	Activity  storage.ActivityStore   // optional
	Localizer *localization.Localizer // optional
	Now       func() time.Time
}

// NewHub wires a hub around its collaborators. activity and loc may be nil.
func NewHub(s storage.Storage, threads *thread.Service, tracker *presence.Tracker, activity storage.ActivityStore, loc *localization.Localizer) *Hub {
	return &Hub{
		Storage:   s,
		Threads:   threads,
		Presence:  tracker,
		Clients:   NewRegistry(config.DefaultPresenceShards),
		Activity:  activity,
		Localizer: loc,
		Now:       func() time.Time { return time.Now().UTC() },
	}
}

// HandleConnect registers c, announces presence and, when the client named
// a peer, joins their group and sends the caught-up thread. On error the
// client stays registered so HandleDisconnect can undo whatever happened.
func (h *Hub) HandleConnect(ctx context.Context, c Client) error {
	id, user := c.GetConnectionID(), models.NormalizeUsername(c.GetUsername())
	if !h.Clients.Add(c) {
		return apperr.InvalidOperation("duplicate connection")
	}

	if h.Presence.UserConnected(user, id) {
		h.touch(ctx, user)
		h.Clients.SendToMany(h.connectionsExcept(user), models.Event{
			Type:    models.EventUserOnline,
			Payload: models.PresenceChange{Username: user},
		})
	}
	h.Clients.SendTo(id, models.Event{Type: models.EventOnlineUsers, Payload: h.Presence.GetOnlineUsers()})

	if peer := models.NormalizeUsername(c.GetPeer()); peer != "" {
		if err := h.joinThread(ctx, id, user, peer); err != nil {
			return err
		}
	}

	h.Clients.SetState(id, StateActive)
	log.Printf("Client %s connected as %s (peer %q)", id, user, c.GetPeer())
	return nil
}

func (h *Hub) joinThread(ctx context.Context, id, user, peer string) error {
	if peer == user {
		return apperr.InvalidOperation("self-thread")
	}
	if _, err := h.Storage.GetUserByUsername(ctx, peer); err != nil {
		return err
	}

	name := models.GroupName(user, peer)
	var group *models.Group
	err := h.Storage.Transaction(ctx, func(tx storage.Storage) error {
		if _, err := tx.GetOrCreateGroup(ctx, name); err != nil {
			return err
		}
		if err := tx.AttachConnection(ctx, name, id, user); err != nil {
			return err
		}
		g, err := tx.GetGroup(ctx, name)
		group = g
		return err
	})
	if err != nil {
		log.Printf("ERROR: failed to join group %s for %s: %v", name, id, err)
		if errors.Is(err, apperr.ErrPersistence) {
			return apperr.Persistence("join group", err)
		}
		return err
	}
	h.broadcastRoom(group)

	var snapshot []models.Message
	err = h.Storage.Transaction(ctx, func(tx storage.Storage) error {
		var err error
		snapshot, err = h.Threads.WithStorage(tx).CatchUp(ctx, user, peer)
		return err
	})
	if err != nil {
		log.Printf("ERROR: failed to load thread %s for %s: %v", name, id, err)
		return err
	}
	if snapshot == nil {
		snapshot = []models.Message{}
	}
	h.Clients.SendTo(id, models.Event{Type: models.EventThreadSnapshot, Payload: snapshot})
	return nil
}

// HandleSend runs a command received on an active connection.
func (h *Hub) HandleSend(ctx context.Context, c Client, cmd models.ClientCommand) error {
	if h.Clients.State(c.GetConnectionID()) != StateActive {
		return apperr.InvalidOperation("connection not active")
	}
	switch cmd.Type {
	case models.CommandSendMessage:
		_, err := h.SendMessage(ctx, c.GetUsername(), cmd.RecipientUsername, cmd.Content)
		return err
	default:
		return apperr.InvalidOperation("unknown command")
	}
}

// SendMessage stores a message from sender to recipient and pushes it out.
// Whether it is stored as read is decided inside the same transaction that
// inserts it. Events go out only after the commit.
func (h *Hub) SendMessage(ctx context.Context, sender, recipient, content string) (*models.Message, error) {
	sender, recipient = models.NormalizeUsername(sender), models.NormalizeUsername(recipient)
	name := models.GroupName(sender, recipient)

	var (
		msg       *models.Message
		delivery  Delivery
		roomConns []string
	)
	err := h.Storage.Transaction(ctx, func(tx storage.Storage) error {
		inRoom, err := tx.GroupHasParticipant(ctx, name, recipient)
		if err != nil {
			return err
		}
		delivery = Route(inRoom, h.Presence.GetConnectionsForUser(recipient))

		var opts []thread.AppendOption
		if delivery.Outcome == Delivered {
			opts = append(opts, thread.MarkedRead())
		}
		msg, err = h.Threads.WithStorage(tx).AppendMessage(ctx, sender, recipient, content, opts...)
		if err != nil {
			return err
		}

		group, err := tx.GetGroup(ctx, name)
		switch {
		case err == nil:
			roomConns = group.ConnectionIDs()
		case errors.Is(err, apperr.ErrNotFound):
		default:
			return err
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if delivery.Outcome == NotifiedOnly {
		h.Clients.SendToMany(delivery.Notify, models.Event{
			Type:    models.EventMessageNotification,
			Payload: models.MessageNotification{Username: msg.SenderUsername, KnownAs: msg.SenderKnownAs},
		})
	}
	h.Clients.SendToMany(roomConns, models.Event{Type: models.EventMessageCreated, Payload: msg})
	h.touch(ctx, sender)
	return msg, nil
}

// HandleDisconnect removes c from its group and from presence. A second call
// for the same connection is a no-op.
func (h *Hub) HandleDisconnect(ctx context.Context, c Client) error {
	id, user := c.GetConnectionID(), models.NormalizeUsername(c.GetUsername())
	defer c.Close()

	if !h.Clients.Remove(c) {
		return nil
	}

	var detachErr error
	group, err := h.Storage.DetachConnection(ctx, id)
	switch {
	case errors.Is(err, apperr.ErrNotFound):
		group = nil
	case err != nil:
		log.Printf("ERROR: failed to detach connection %s: %v", id, err)
		group, detachErr = nil, err
	}

	if h.Presence.UserDisconnected(user, id) {
		h.touch(ctx, user)
		h.Clients.SendToMany(h.Presence.GetAllConnections(), models.Event{
			Type:    models.EventUserOffline,
			Payload: models.PresenceChange{Username: user},
		})
	}
	if group != nil {
		h.broadcastRoom(group)
	}

	log.Printf("Client %s (%s) disconnected", id, user)
	return detachErr
}

// ReportError sends err to c as a localized error event.
func (h *Hub) ReportError(c Client, err error) {
	payload := models.ErrorPayload{Code: apperr.Code(err), Message: err.Error()}
	if h.Localizer != nil {
		payload.Message = h.Localizer.ErrorMessage(c.GetLanguage(), err)
	}
	c.Deliver(models.Event{Type: models.EventError, Payload: payload})
}

// OnlineUsers lists users with at least one open connection.
func (h *Hub) OnlineUsers() []string {
	return h.Presence.GetOnlineUsers()
}

func (h *Hub) broadcastRoom(group *models.Group) {
	h.Clients.SendToMany(group.ConnectionIDs(), models.Event{
		Type:    models.EventRoomUpdated,
		Payload: models.RoomUpdate{Name: group.Name, Connections: group.Connections},
	})
}

// connectionsExcept returns the open connections of every online user but user.
func (h *Hub) connectionsExcept(user string) []string {
	var ids []string
	for _, u := range h.Presence.GetOnlineUsers() {
		if u == user {
			continue
		}
		ids = append(ids, h.Presence.GetConnectionsForUser(u)...)
	}
	return ids
}

func (h *Hub) touch(ctx context.Context, user string) {
	if h.Activity == nil {
		return
	}
	if err := h.Activity.TouchLastActive(ctx, user, h.Now()); err != nil {
		log.Printf("WARNING: failed to record activity for %s: %v", user, err)
	}
}
