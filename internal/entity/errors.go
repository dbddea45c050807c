package entity

import "errors"

var (
	ErrUnknownStatus    = errors.New("status desconhecido")
	ErrDealNotFound     = errors.New("deal não encontrado")
	ErrChatNotFound     = errors.New("chat não encontrado")
	ErrInviteNotFound   = errors.New("convite não encontrado")
	ErrInviteNotPending = errors.New("convite não está pendente")
	ErrProfileNotFound  = errors.New("perfil não encontrado")
	ErrInvalidFunnel    = errors.New("funil inválido")
	ErrDocumentNotFound = errors.New("documento não encontrado")
	ErrThreadNotFound   = errors.New("conversa não encontrada")
)
