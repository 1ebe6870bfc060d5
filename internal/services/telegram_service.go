package services

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
)

// TelegramService handles sending notifications to Telegram.
type TelegramService struct {
	botToken    string
	adminChatID string
}

// NewTelegramService creates a new TelegramService.
func NewTelegramService(botToken, adminChatID string) *TelegramService {
	return &TelegramService{
		botToken:    botToken,
		adminChatID: adminChatID,
	}
}

type telegramMessage struct {
	ChatID    string `json:"chat_id"`
	Text      string `json:"text"`
	ParseMode string `json:"parse_mode"`
}

// SendMessage sends a message to specified chat.
func (s *TelegramService) SendMessage(chatID, text string) error {
	if s.botToken == "" {
		log.Println("[Telegram] Bot token not configured")
		return nil
	}

	url := fmt.Sprintf("https://api.telegram.org/bot%s/sendMessage", s.botToken)

	msg := telegramMessage{
		ChatID:    chatID,
		Text:      text,
		ParseMode: "HTML",
	}

	body, err := json.Marshal(msg)
	if err != nil {
		return err
	}

	resp, err := http.Post(url, "application/json", bytes.NewReader(body))
	if err != nil {
		log.Printf("[Telegram] Failed to send message: %v", err)
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		log.Printf("[Telegram] Unexpected status: %d", resp.StatusCode)
		return fmt.Errorf("telegram returned status %d", resp.StatusCode)
	}

	return nil
}

// NotifyAdmin posts a message to the configured admin chat. Failures are
// logged and swallowed so notifications never break a request.
func (s *TelegramService) NotifyAdmin(text string) {
	if s.adminChatID == "" {
		return
	}

	if err := s.SendMessage(s.adminChatID, text); err != nil {
		log.Printf("[Telegram] Admin notification failed: %v", err)
	}
}

// NotifyRegistration reports a freshly registered collector.
func (s *TelegramService) NotifyRegistration(email, provider string) {
	s.NotifyAdmin(fmt.Sprintf("🆕 New collector registered\nEmail: %s\nProvider: %s", email, provider))
}

// NotifyBan reports a ban or restore action on a collector account.
func (s *TelegramService) NotifyBan(email, reason string, banned bool) {
	if banned {
		s.NotifyAdmin(fmt.Sprintf("🚫 Collector banned\nEmail: %s\nReason: %s", email, reason))
		return
	}
	s.NotifyAdmin(fmt.Sprintf("♻️ Collector restored\nEmail: %s", email))
}

// NotifyResetCode delivers a password-reset code to the admin chat for
// out-of-band handover.
func (s *TelegramService) NotifyResetCode(email, code string) {
	s.NotifyAdmin(fmt.Sprintf("🔑 Password reset requested\nEmail: %s\nCode: <code>%s</code>", email, code))
}
