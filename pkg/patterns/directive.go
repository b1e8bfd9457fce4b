package patterns

import (
	"strings"

	"github.com/maeum-ai/maeum-go/pkg/storage"
)

// RenderDirective renders the system directive for a pattern profile.
//
// The directive instructs the reply model to match the user's learned
// length, question, depth, and formality preferences.
func RenderDirective(p *storage.PatternProfile) string {
	var b strings.Builder
	b.WriteString("너는 사용자의 대화 패턴을 학습한 맞춤형 AI야.\n\n")

	switch p.LengthPreference {
	case LengthShort:
		b.WriteString("- 답변은 1-2문장으로 간결하게 해줘\n")
	case LengthLong:
		b.WriteString("- 자세하고 구체적인 3-5문장 답변을 해줘\n")
	default:
		b.WriteString("- 적당한 길이(2-3문장)로 답변해줘\n")
	}

	if p.ConversationStyle == StyleQuestions {
		b.WriteString("- 대화를 이어가기 위해 적절한 질문을 포함해줘\n")
	} else {
		b.WriteString("- 서술형 답변 위주로, 질문은 꼭 필요할 때만 해줘\n")
	}

	switch p.TopicDepthPreference {
	case DepthDeep:
		b.WriteString("- 주제를 깊이 있게 다뤄줘\n")
	case DepthShallow:
		b.WriteString("- 가볍고 부담스럽지 않게 대화해줘\n")
	}

	switch p.FormalityLevel {
	case FormalityFormal:
		b.WriteString("- 정중하고 격식 있는 어투를 사용해줘\n")
	case FormalityCasual:
		b.WriteString("- 친근하고 편안한 반말톤으로 대화해줘\n")
	default:
		b.WriteString("- 상황에 맞게 적절한 톤을 사용해줘\n")
	}

	b.WriteString("\n이 사용자의 대화 패턴에 맞춰서 자연스럽게 대화해줘.")
	return b.String()
}
