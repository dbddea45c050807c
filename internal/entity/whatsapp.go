package entity

// ConnectionState é o estado do widget de conexão do WhatsApp.
type ConnectionState string

const (
	StateDisconnected ConnectionState = "disconnected"
	StateConnecting   ConnectionState = "connecting"
	StateQRCode       ConnectionState = "qrcode"
	StateConnected    ConnectionState = "connected"
)

func (s ConnectionState) IsValid() bool {
	switch s {
	case StateDisconnected, StateConnecting, StateQRCode, StateConnected:
		return true
	}
	return false
}

type SessionInfo struct {
	Name   string `json:"name"`
	Number string `json:"number"`
}

// WhatsAppConnectResponse é o corpo de POST /integrations/whatsapp/connect.
// QRText traz o conteúdo cru do QR quando o gateway o envia em texto,
// para clientes que desenham o código no terminal.
type WhatsAppConnectResponse struct {
	QRCode string           `json:"qrcode,omitempty"`
	QRText string           `json:"qrtext,omitempty"`
	Status *ConnectedStatus `json:"status,omitempty"`
}

type ConnectedStatus struct {
	Connected bool   `json:"connected"`
	JID       string `json:"jid,omitempty"`
}

type InstanceInfo struct {
	ProfileName string `json:"profileName"`
	Owner       string `json:"owner"`
}

type InstanceConfig struct {
	Token    string `json:"token"`
	Instance string `json:"instance"`
}

// WhatsAppStatus é o corpo de GET /integrations/whatsapp/status.
type WhatsAppStatus struct {
	Status   ConnectedStatus `json:"status"`
	Instance *InstanceInfo   `json:"instance,omitempty"`
	Error    string          `json:"error,omitempty"`
	Config   *InstanceConfig `json:"config,omitempty"`
}
