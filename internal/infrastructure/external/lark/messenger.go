package lark

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/sriram-gona-01/expense-project-finalcode/internal/application/port"
)

// MessageSender is the part of SDKClient the notifier depends on
type MessageSender interface {
	SendMessage(ctx context.Context, receiveIDType, receiveID, msgType, content string) (string, error)
}

// Notifier implements port.ReviewNotifier by messaging one Lark recipient
type Notifier struct {
	sender        MessageSender
	receiveIDType string
	receiveID     string
	logger        *zap.Logger
}

var _ port.ReviewNotifier = (*Notifier)(nil)

// NewNotifier creates a notifier sending to cfg.ReceiveID
func NewNotifier(sender MessageSender, cfg Config, logger *zap.Logger) *Notifier {
	idType := cfg.ReceiveIDType
	if idType == "" {
		idType = "open_id"
	}
	return &Notifier{
		sender:        sender,
		receiveIDType: idType,
		receiveID:     cfg.ReceiveID,
		logger:        logger,
	}
}

// NotifyPending sends a text message describing the exception awaiting review
func (n *Notifier) NotifyPending(ctx context.Context, req *port.ReviewRequest, link string) error {
	if n.receiveID == "" {
		return fmt.Errorf("receive id cannot be empty")
	}
	if req == nil {
		return fmt.Errorf("review request cannot be nil")
	}

	content, err := textContent(FormatReviewMessage(req, link))
	if err != nil {
		return err
	}

	messageID, err := n.sender.SendMessage(ctx, n.receiveIDType, n.receiveID, "text", content)
	if err != nil {
		return fmt.Errorf("failed to notify reviewer: %w", err)
	}

	n.logger.Info("Reviewer notified",
		zap.String("expense_id", req.ExpenseID),
		zap.String("message_id", messageID))

	return nil
}

// FormatReviewMessage renders the plain-text body of a review notification
func FormatReviewMessage(req *port.ReviewRequest, link string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Expense %s needs review\n", req.ExpenseID)
	vendor := req.Vendor
	if vendor == "" {
		vendor = "unknown vendor"
	}
	fmt.Fprintf(&b, "Vendor: %s\n", vendor)
	if req.Amount != nil {
		fmt.Fprintf(&b, "Amount: %.2f\n", *req.Amount)
	} else {
		b.WriteString("Amount: not extracted\n")
	}
	fmt.Fprintf(&b, "Reason: %s", req.Reason)
	if link != "" {
		fmt.Fprintf(&b, "\nDecide: %s", link)
	}
	return b.String()
}

func textContent(text string) (string, error) {
	data, err := json.Marshal(map[string]string{"text": text})
	if err != nil {
		return "", fmt.Errorf("failed to marshal message content: %w", err)
	}
	return string(data), nil
}
