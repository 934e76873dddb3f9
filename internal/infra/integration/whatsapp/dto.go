package whatsapp

type SendTextInput struct {
	Number string `json:"number"` // Ex: "5511999999999"
	Text   string `json:"text"`
}

type MessageKey struct {
	RemoteJID string `json:"remoteJid"`
	FromMe    bool   `json:"fromMe"`
	ID        string `json:"id"`
}

type SendTextResponse struct {
	Key    MessageKey `json:"key"`
	Status string     `json:"status"`
}

type ConnectionStateResponse struct {
	Instance struct {
		InstanceName string `json:"instanceName"`
		State        string `json:"state"` // open, connecting, close
	} `json:"instance"`
}

type ConnectResponse struct {
	PairingCode string `json:"pairingCode"`
	Code        string `json:"code"`
	Base64      string `json:"base64"` // QR code como data URI
	Count       int    `json:"count"`
}

type ErrorResponse struct {
	Status   int `json:"status"`
	Response struct {
		Message any `json:"message"`
	} `json:"response"`
}

// WebhookEvent is the envelope Evolution posts to our webhook.
type WebhookEvent struct {
	Event    string         `json:"event"` // connection.update, messages.update
	Instance string         `json:"instance"`
	Data     map[string]any `json:"data"`
}
