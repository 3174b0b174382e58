package main

// @title           Atendente de Pedidos API
// @version         1.0
// @description     Atendimento de pedidos pelo WhatsApp: webhook da Cloud API e consulta das sessões de conversa

// @contact.name   API Support

// @host      localhost:8080
// @BasePath  /api/v1
