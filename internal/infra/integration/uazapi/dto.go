package uazapi

// Instance é o bloco `instance` devolvido pela UazAPI.
type Instance struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Token       string `json:"token"`
	Status      string `json:"status"`
	QRCode      string `json:"qrcode"`
	PairCode    string `json:"paircode"`
	ProfileName string `json:"profileName"`
	Owner       string `json:"owner"`
}

type ConnectionStatus struct {
	Connected bool   `json:"connected"`
	LoggedIn  bool   `json:"loggedIn"`
	JID       string `json:"jid"`
}

type StatusResponse struct {
	Instance Instance         `json:"instance"`
	Status   ConnectionStatus `json:"status"`
}

type ConnectResponse struct {
	Connected bool     `json:"connected"`
	LoggedIn  bool     `json:"loggedIn"`
	JID       string   `json:"jid"`
	Instance  Instance `json:"instance"`
}

type SendTextInput struct {
	Number  string `json:"number"`
	Text    string `json:"text"`
	ReplyID string `json:"replyid,omitempty"`
}

type SendResponse struct {
	ID        string `json:"id"`
	MessageID string `json:"messageid"`
	Status    string `json:"status"`
}

type webhookConfig struct {
	Enabled bool     `json:"enabled"`
	URL     string   `json:"url"`
	Events  []string `json:"events"`
}

// WebhookEvent é o corpo que a UazAPI envia para /webhooks/whatsapp.
type WebhookEvent struct {
	EventType string         `json:"EventType"`
	Event     string         `json:"event"`
	Instance  string         `json:"instance"`
	Message   WebhookMessage `json:"message"`
	Data      *WebhookData   `json:"data,omitempty"`
}

type WebhookMessage struct {
	ID          string `json:"id"`
	MessageID   string `json:"messageid"`
	ChatID      string `json:"chatid"`
	Sender      string `json:"sender"`
	SenderName  string `json:"senderName"`
	FromMe      bool   `json:"fromMe"`
	Text        string `json:"text"`
	MessageType string `json:"messageType"`
}

// WebhookData cobre o formato estilo Baileys (key + message).
type WebhookData struct {
	Key struct {
		RemoteJID string `json:"remoteJid"`
		FromMe    bool   `json:"fromMe"`
		ID        string `json:"id"`
	} `json:"key"`
	PushName string `json:"pushName"`
	Message  struct {
		Conversation        string `json:"conversation"`
		ExtendedTextMessage struct {
			Text string `json:"text"`
		} `json:"extendedTextMessage"`
	} `json:"message"`
}
