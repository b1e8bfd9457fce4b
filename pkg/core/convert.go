package core

import (
	"github.com/maeum-ai/maeum-go/pkg/intimacy"
	"github.com/maeum-ai/maeum-go/pkg/storage"
)

// memoryFromStorage converts a storage record to the public type.
func memoryFromStorage(m *storage.Memory) *Memory {
	if m == nil {
		return nil
	}
	return &Memory{
		ID:              m.ID,
		UserID:          m.UserID,
		Category:        m.Category,
		Key:             m.Key,
		Value:           m.Value,
		Importance:      m.Importance,
		MentionCount:    m.MentionCount,
		CreatedAt:       m.CreatedAt,
		LastMentionedAt: m.LastMentionedAt,
		Score:           m.Score,
	}
}

func memoriesFromStorage(memories []*storage.Memory) []*Memory {
	out := make([]*Memory, 0, len(memories))
	for _, m := range memories {
		out = append(out, memoryFromStorage(m))
	}
	return out
}

// profileFromStorage converts a profile record to the public type.
func profileFromStorage(p *storage.PatternProfile) *PatternProfile {
	if p == nil {
		return nil
	}
	return &PatternProfile{
		UserID:                   p.UserID,
		LengthPreference:         p.LengthPreference,
		ConversationStyle:        p.ConversationStyle,
		TopicDepthPreference:     p.TopicDepthPreference,
		FormalityLevel:           p.FormalityLevel,
		ContinuationStyle:        p.ContinuationStyle,
		ResponseSpeedExpectation: p.ResponseSpeedExpectation,
		Confidence:               p.Confidence,
		SampleSize:               p.SampleSize,
		GeneratedDirective:       p.GeneratedDirective,
		UpdatedAt:                p.UpdatedAt,
	}
}

// intimacyFromStorage converts a score record to the public type, attaching
// the derived tier.
func intimacyFromStorage(s *storage.IntimacyScore) *IntimacyScore {
	if s == nil {
		return nil
	}
	return &IntimacyScore{
		UserID:            s.UserID,
		Score:             s.Score,
		Tier:              string(intimacy.TierOf(s.Score)),
		LastInteractionAt: s.LastInteractionAt,
	}
}

// conversationFromStorage converts a conversation record to the public type.
func conversationFromStorage(c *storage.Conversation) *Conversation {
	if c == nil {
		return nil
	}
	messages := make([]*Message, 0, len(c.Messages))
	for _, m := range c.Messages {
		messages = append(messages, &Message{
			ID:             m.ID,
			ConversationID: m.ConversationID,
			Role:           m.Role,
			Content:        m.Content,
			CreatedAt:      m.CreatedAt,
		})
	}
	return &Conversation{
		ID:        c.ID,
		UserID:    c.UserID,
		Messages:  messages,
		CreatedAt: c.CreatedAt,
	}
}
