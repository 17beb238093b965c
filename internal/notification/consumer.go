package notification

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"time"

	"github.com/neiist-dev/activities-backend/config"
	"github.com/neiist-dev/activities-backend/internal/member"
	"github.com/neiist-dev/activities-backend/utils"
)

// Consumer reads the signup and sync-run topics and turns them into email.
// It runs alongside the API server; losing it loses notifications, nothing
// else.
type Consumer struct {
	Cfg     *config.Config
	Members *member.Repository
}

func NewConsumer(cfg *config.Config, members *member.Repository) *Consumer {
	return &Consumer{Cfg: cfg, Members: members}
}

// Start launches one consumer goroutine per topic. Both stop when ctx is
// cancelled.
func (c *Consumer) Start(ctx context.Context) {
	go c.consume(ctx, c.Cfg.KafkaSignupTopic, "notification-signups", c.handleSignup)
	go c.consume(ctx, c.Cfg.KafkaSyncTopic, "notification-sync-runs", c.handleSyncRun)
	log.Println("✅ Notification consumers started")
}

func (c *Consumer) consume(ctx context.Context, topic, groupID string, handle func(context.Context, []byte) error) {
	reader := utils.NewReader(c.Cfg, topic, groupID)
	defer reader.Close()

	for {
		msg, err := reader.ReadMessage(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, io.EOF) {
				return
			}
			log.Printf("⚠️ Kafka read from %s failed: %v", topic, err)
			time.Sleep(5 * time.Second)
			continue
		}
		if err := handle(ctx, msg.Value); err != nil {
			log.Printf("⚠️ Notification for %s message failed: %v", topic, err)
		}
	}
}

type signupMessage struct {
	EventID     string    `json:"event_id"`
	EventTitle  string    `json:"event_title"`
	MemberISTID string    `json:"member_istid"`
	Action      string    `json:"action"`
	At          time.Time `json:"at"`
}

func (c *Consumer) handleSignup(_ context.Context, value []byte) error {
	var msg signupMessage
	if err := json.Unmarshal(value, &msg); err != nil {
		return fmt.Errorf("decode signup message: %w", err)
	}

	m, err := c.Members.GetByISTID(msg.MemberISTID)
	if err != nil {
		return fmt.Errorf("look up member %s: %w", msg.MemberISTID, err)
	}

	var subject, body string
	if msg.Action == "cancelled" {
		subject = fmt.Sprintf("Signup cancelled: %s", msg.EventTitle)
		body = fmt.Sprintf("Hi %s,\r\n\r\nYour signup for %q was cancelled.\r\n", m.Name, msg.EventTitle)
	} else {
		subject = fmt.Sprintf("Signup confirmed: %s", msg.EventTitle)
		body = fmt.Sprintf("Hi %s,\r\n\r\nYou are signed up for %q. See you there!\r\n", m.Name, msg.EventTitle)
	}

	return utils.SendEmail(c.Cfg, m.Email, subject, body)
}

type syncRunMessage struct {
	ID            string `json:"id"`
	Kind          string `json:"kind"`
	Status        string `json:"status"`
	Error         string `json:"error"`
	MembersFailed int    `json:"members_failed"`
	DurationMS    int64  `json:"duration_ms"`
}

// handleSyncRun alerts the operator address about unhealthy runs; successful
// ones are only persisted, never mailed.
func (c *Consumer) handleSyncRun(_ context.Context, value []byte) error {
	var msg syncRunMessage
	if err := json.Unmarshal(value, &msg); err != nil {
		return fmt.Errorf("decode sync run message: %w", err)
	}

	if msg.Status == "success" || c.Cfg.AdminEmail == "" {
		return nil
	}

	subject := fmt.Sprintf("Sync run %s: %s", msg.Kind, msg.Status)
	body := fmt.Sprintf(
		"Sync run %s (%s) finished with status %s after %dms.\r\nMembers failed: %d\r\nError: %s\r\n",
		msg.ID, msg.Kind, msg.Status, msg.DurationMS, msg.MembersFailed, msg.Error)

	return utils.SendEmail(c.Cfg, c.Cfg.AdminEmail, subject, body)
}
