package services

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	log "github.com/sirupsen/logrus"
)

// TelegramNotifier is a fire-and-forget notification sink. Send failures are
// logged and never propagated; a dropped notification must not affect trading.
type TelegramNotifier struct {
	botToken string
	chatID   string
}

func NewTelegramNotifier(botToken, chatID string) *TelegramNotifier {
	return &TelegramNotifier{
		botToken: botToken,
		chatID:   chatID,
	}
}

func (n *TelegramNotifier) Send(msg string) {
	if n.botToken == "" || n.chatID == "" {
		log.Infof("telegram creds missing; would have sent: %s", msg)
		return
	}

	client := http.Client{
		Timeout: 6 * time.Second,
	}

	payload, err := json.Marshal(map[string]string{
		"chat_id": n.chatID,
		"text":    msg,
	})
	if err != nil {
		log.Errorf("TelegramNotifier.Send: failed to marshal payload: %v", err)
		return
	}

	url := fmt.Sprintf("https://api.telegram.org/bot%s/sendMessage", n.botToken)

	res, err := client.Post(url, "application/json", bytes.NewBuffer(payload))
	if err != nil {
		log.Errorf("TelegramNotifier.Send: failed to send message: %v", err)
		return
	}

	defer res.Body.Close()

	if res.StatusCode >= 400 {
		log.Errorf("TelegramNotifier.Send: telegram returned %s", res.Status)
		return
	}

	log.Debugf("telegram sent: %s", msg)
}
