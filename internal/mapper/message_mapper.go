package mapper

import (
	"support-desk-be/internal/entity"
	"support-desk-be/internal/model"
)

type MessageMapper struct{}

func NewMessageMapper() *MessageMapper {
	return &MessageMapper{}
}

func (m *MessageMapper) ToEntity(msg *model.Message) *entity.Message {
	if msg == nil {
		return nil
	}
	return &entity.Message{
		Id:             msg.Id,
		ConversationId: msg.ConversationId,
		SenderId:       msg.SenderId,
		SenderRole:     entity.UserRole(msg.SenderRole),
		Content:        msg.Content,
		CreatedAt:      msg.CreatedAt,
	}
}

func (m *MessageMapper) ToModel(msg *entity.Message) *model.Message {
	if msg == nil {
		return nil
	}
	return &model.Message{
		Id:             msg.Id,
		ConversationId: msg.ConversationId,
		SenderId:       msg.SenderId,
		SenderRole:     string(msg.SenderRole),
		Content:        msg.Content,
		CreatedAt:      msg.CreatedAt,
	}
}

func (m *MessageMapper) ToEntities(models []*model.Message) []*entity.Message {
	entities := make([]*entity.Message, len(models))
	for i, msg := range models {
		entities[i] = m.ToEntity(msg)
	}
	return entities
}

func (m *MessageMapper) ToModels(entities []*entity.Message) []*model.Message {
	models := make([]*model.Message, len(entities))
	for i, msg := range entities {
		models[i] = m.ToModel(msg)
	}
	return models
}
