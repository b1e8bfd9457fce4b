package extraction

// Category names for extracted facts.
const (
	CategoryHobby        = "hobby"
	CategoryWork         = "work"
	CategoryRelationship = "relationship"
	CategoryGoal         = "goal"
	CategoryPreference   = "preference"
	CategoryExperience   = "experience"
)

// ValueMode controls what text is captured as the memory value when one of an
// entry's patterns matches.
type ValueMode int

const (
	// ValueMatchedPattern stores the matched pattern itself.
	ValueMatchedPattern ValueMode = iota

	// ValueUtterance stores the full utterance, truncated to MaxValueRunes.
	ValueUtterance
)

// MaxValueRunes is the truncation length for utterance-valued entries.
const MaxValueRunes = 100

// Entry is one extractable fact type: a set of surface patterns that map to a
// normalized key within a category.
type Entry struct {
	// Category is the memory category this entry belongs to.
	Category string

	// Key is the normalized key within the category (e.g. "sports").
	Key string

	// Patterns are the substrings that trigger this entry.
	Patterns []string

	// Importance is the weight assigned to extracted facts, 1-5.
	Importance int

	// Mode controls what text is captured as the value.
	Mode ValueMode
}

// Lexicon is an ordered list of entries. Order matters: within an utterance at
// most one candidate is produced per (category, key), and entries are scanned
// in lexicon order.
type Lexicon []Entry

// DefaultLexicon returns the built-in Korean lexicon.
//
// Callers may extend or replace it; the returned slice is a fresh copy on
// every call, so mutation does not affect other callers.
func DefaultLexicon() Lexicon {
	entries := []Entry{
		{Category: CategoryHobby, Key: "sports", Importance: 3, Patterns: []string{
			"운동", "헬스", "요가", "필라테스", "수영", "농구", "축구", "야구",
			"테니스", "골프", "등산", "조깅", "런닝",
		}},
		{Category: CategoryHobby, Key: "music", Importance: 3, Patterns: []string{
			"음악", "노래", "기타", "피아노", "드럼", "바이올린", "콘서트", "공연", "밴드",
		}},
		{Category: CategoryHobby, Key: "reading", Importance: 2, Patterns: []string{
			"독서", "책", "소설", "에세이", "자기계발서", "도서관",
		}},
		{Category: CategoryHobby, Key: "cooking", Importance: 2, Patterns: []string{
			"요리", "베이킹", "제빵", "맛집", "레시피", "쿠킹",
		}},
		{Category: CategoryHobby, Key: "travel", Importance: 4, Patterns: []string{
			"여행", "캠핑", "해외여행", "국내여행", "여행계획",
		}},
		{Category: CategoryHobby, Key: "gaming", Importance: 2, Patterns: []string{
			"게임", "게이밍", "PC방", "콘솔", "모바일게임",
		}},
		{Category: CategoryHobby, Key: "art", Importance: 3, Patterns: []string{
			"그림", "그래픽", "디자인", "사진", "촬영", "편집",
		}},
		{Category: CategoryWork, Key: "current_work", Importance: 3, Patterns: []string{
			"회사", "직장", "사무실", "출근", "퇴근", "야근", "회의", "프로젝트",
			"업무", "일", "팀장", "동료", "상사", "부서", "개발자", "디자이너",
			"마케터", "기획자", "영업", "인사", "재무", "학생", "대학교", "학교",
			"수업", "강의", "시험", "과제", "전공", "학과",
		}},
		{Category: CategoryRelationship, Key: "family", Importance: 4, Patterns: []string{
			"엄마", "아빠", "부모님", "형", "누나", "언니", "동생", "가족",
			"할머니", "할아버지",
		}},
		{Category: CategoryRelationship, Key: "friends", Importance: 3, Patterns: []string{
			"친구", "절친", "동창", "친구들", "룸메이트",
		}},
		{Category: CategoryRelationship, Key: "romantic", Importance: 4, Patterns: []string{
			"남친", "여친", "애인", "연인", "남자친구", "여자친구", "썸", "데이트",
		}},
		{Category: CategoryRelationship, Key: "colleagues", Importance: 3, Patterns: []string{
			"동료", "선배", "후배", "팀원", "상사", "부하직원",
		}},
		{Category: CategoryGoal, Key: "future_plan", Importance: 4, Mode: ValueUtterance, Patterns: []string{
			"계획", "목표", "하고 싶", "배우고 싶", "가고 싶", "되고 싶",
			"준비", "도전", "시작", "해볼", "다짐", "결심",
		}},
		{Category: CategoryPreference, Key: "food", Importance: 2, Patterns: []string{
			"좋아하는 음식", "싫어하는 음식", "맛있", "맛없", "짜", "싱거", "매워", "달아",
		}},
		{Category: CategoryPreference, Key: "weather", Importance: 2, Patterns: []string{
			"좋아하는 날씨", "싫어하는 날씨", "더워", "추워", "시원", "따뜻",
		}},
		{Category: CategoryPreference, Key: "time", Importance: 2, Patterns: []string{
			"아침형", "저녁형", "새벽", "밤늦게",
		}},
		{Category: CategoryPreference, Key: "style", Importance: 2, Patterns: []string{
			"스타일", "패션", "브랜드", "선호",
		}},
		{Category: CategoryExperience, Key: "recent_experience", Importance: 3, Mode: ValueUtterance, Patterns: []string{
			"어제", "오늘", "이번 주", "지난주", "최근에", "처음", "마지막",
			"기억에 남는", "잊을 수 없는", "충격적", "감동적", "슬펐", "기뻤",
			"성공했", "실패했", "합격", "불합격", "승진", "퇴사", "입학", "졸업",
		}},
	}

	out := make(Lexicon, len(entries))
	copy(out, entries)
	return out
}
