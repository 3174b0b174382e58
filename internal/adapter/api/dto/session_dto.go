package dto

import "github.com/hugohenrick/atendente-pedidos/pkg/chat"

// SessionStatsResponse resume as sessões em memória
type SessionStatsResponse struct {
	Active  int `json:"active"`
	Workers int `json:"workers"`
}

// HistoryResponse é uma página do histórico de um cliente
type HistoryResponse struct {
	CustomerKey string         `json:"customer_key"`
	Page        int            `json:"page"`
	PageSize    int            `json:"page_size"`
	Messages    []chat.Message `json:"messages"`
}

// WebhookAck confirma o recebimento de um webhook
type WebhookAck struct {
	Received int `json:"received"`
	Dropped  int `json:"dropped,omitempty"`
}
