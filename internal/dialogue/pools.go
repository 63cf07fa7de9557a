package dialogue

// Theme is one of the fixed thematic categories every question belongs to.
type Theme int

const (
	ThemeMorning Theme = iota
	ThemeHighlight
	ThemeFood
	ThemeWork
	ThemeRelationships
)

func (t Theme) String() string {
	switch t {
	case ThemeMorning:
		return "morning"
	case ThemeHighlight:
		return "highlight"
	case ThemeFood:
		return "food"
	case ThemeWork:
		return "work"
	case ThemeRelationships:
		return "relationships"
	}
	return "unknown"
}

// questionPools holds the per-language themed question pools, in Deary's
// warm-editor voice. Within the morning pool, index 4 is the emotion-probe
// variant and is never used as the first question of a session.
type questionPools struct {
	morning       []string
	highlight     []string
	food          []string
	work          []string
	relationships []string
}

const morningEmotionProbeIndex = 4

var poolsKo = &questionPools{
	morning: []string{
		"오늘 아침에 제일 먼저 하신 게 뭐예요? 물 마시기? 아니면 핸드폰 확인?",
		"오늘 아침 출근(등교) 길에 평소와 다르게 눈에 띈 풍경이 있었는지 궁금해요.",
		"집을 나설 때 공기가 어땠나요? 춥진 않았어요, 아니면 좀 더웠나요?",
		"오늘 하루를 시작하면서 다짐하신 게 있나요?",
		"오늘 아침 눈 뜨셨을 때 개운했나요, 아니면 더 자고 싶었나요?",
	},
	highlight: []string{
		"오늘 하루를 사진 한 장으로 남긴다면, 어떤 순간을 찍고 싶으세요?",
		"오늘 가장 크게 웃었던 순간이 언제였는지 궁금해요. 뭐 때문에 그렇게 웃으셨어요?",
		"예상치 못하게 당황스럽거나 놀라셨던 일이 있었나요?",
		"오늘 들으신 노래나 영상 중에 기억에 남는 게 있나요?",
		"오늘 스스로를 칭찬해주고 싶은 순간이 있다면 언제였나요?",
	},
	food: []string{
		"오늘 점심은 뭐 드셨어요? 맛있는 거 드셨으면 좋겠는데.",
		"누구랑 같이 드셨어요? 밥 먹으면서 무슨 얘기 나누셨는지 궁금해요.",
		"오늘 커피나 차 마셨나요? 카페 분위기는 어땠나요?",
		"오늘 배고픈데 참으신 적 있나요, 아니면 너무 배부르게 드셨나요?",
		"오늘 드신 음식 중에 '이건 또 먹고 싶다' 싶은 게 있었나요?",
	},
	work: []string{
		"오늘 해야 했던 일(과제)들은 계획대로 잘 끝내셨나요? 아니면 좀 미뤄지셨나요?",
		"일하시다가(공부하시다가) 제일 답답하거나 막히셨던 순간이 언제였는지 궁금해요.",
		"오늘 회의나 수업 시간에 기억에 남는 내용이나 발언이 있었나요?",
		"오늘 에너지를 가장 많이 쓴 일이 뭐였나요?",
		"집에 돌아오는 길에 일 생각은 잊으셨나요, 아니면 계속 떠오르셨나요?",
	},
	relationships: []string{
		"오늘 가장 말을 많이 나누신 분이 누구였나요?",
		"오늘 누군가와 대화하시다가 인상 깊었던 문장이 있나요?",
		"오늘 연락하고 싶었는데 못 하신 분이 있나요?",
		"오늘 만나신 분들 중에 표정이 기억나는 얼굴이 있나요?",
		"오늘 인간관계 때문에 조금이라도 신경 쓰이거나 속상한 일은 없었나요?",
	},
}

var poolsEn = &questionPools{
	morning: []string{
		"What was the very first thing you did this morning? Had some water, or checked your phone?",
		"I'm curious—on your way to work or school this morning, did you notice anything different from usual?",
		"How was the air when you left the house? A bit cold, or rather warm?",
		"Did you make any resolutions when you started your day today?",
		"When you woke up, did you feel refreshed, or like you could've slept more?",
	},
	highlight: []string{
		"If you could capture today in one photo, what moment would you take? I'm curious.",
		"When did you laugh the hardest today? I'd love to hear what made you laugh like that.",
		"Was there anything that caught you off guard or surprised you today?",
		"Any song or video you heard or watched today that stuck with you?",
		"If there's a moment today you'd want to pat yourself on the back for, when was it?",
	},
	food: []string{
		"What did you have for lunch today? I hope it was something good.",
		"Who did you eat with? I'm curious what you talked about over the meal.",
		"Did you have coffee or tea today? How was the café vibe?",
		"Did you skip a meal when you were hungry, or eat a bit too much today?",
		"Was there anything you ate today that you'd want to have again?",
	},
	work: []string{
		"Did you finish what you had to do (or homework) as planned today, or did you put some things off?",
		"I'm curious—when was the most frustrating or stuck moment at work or studying today?",
		"Was there anything memorable said in a meeting or class today?",
		"What task used up most of your energy today?",
		"On your way home, did you leave work behind, or did it keep running through your mind?",
	},
	relationships: []string{
		"Who did you talk to the most today?",
		"Was there a sentence from a conversation today that stuck with you?",
		"Was there anyone you wanted to reach out to but couldn't today?",
		"Do you remember any particular face or expression from someone you met today?",
		"Was there anything that bothered or upset you in your relationships today?",
	},
}

func poolsFor(lang Language) *questionPools {
	if lang == LangEn {
		return poolsEn
	}
	return poolsKo
}

func (p *questionPools) byTheme(t Theme) []string {
	switch t {
	case ThemeMorning:
		return p.morning
	case ThemeHighlight:
		return p.highlight
	case ThemeFood:
		return p.food
	case ThemeWork:
		return p.work
	case ThemeRelationships:
		return p.relationships
	}
	return nil
}

// fallbackOrder is the deterministic rotation used when the model is down:
// one question per theme, in the order the original product cycles them.
func (p *questionPools) fallbackOrder() []string {
	return []string{
		p.morning[0],
		p.food[0],
		p.highlight[0],
		p.relationships[0],
		p.work[0],
	}
}

// themeOf maps a question text back to its theme via the near-duplicate
// policy, so rephrasings still resolve. The boolean is false for text that
// matches no pool question.
func (p *questionPools) themeOf(text string) (Theme, bool) {
	for _, t := range []Theme{ThemeMorning, ThemeHighlight, ThemeFood, ThemeWork, ThemeRelationships} {
		for _, q := range p.byTheme(t) {
			if isNearDuplicate(text, q) {
				return t, true
			}
		}
	}
	return 0, false
}
