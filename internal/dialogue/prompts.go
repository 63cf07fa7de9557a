package dialogue

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

// Prompt builders for the four gateway call patterns. Each renders the
// warm-editor persona in the session language and embeds the running
// context; the engine never relies on the model remembering anything.

func writeSection(buf *bytes.Buffer, name, body string) {
	body = strings.TrimSpace(body)
	if body == "" {
		return
	}
	fmt.Fprintf(buf, "[%s]\n%s\n\n", name, body)
}

func profileText(profile map[string]any, lang Language) string {
	if len(profile) == 0 {
		if lang == LangEn {
			return "No profile info yet"
		}
		return "아직 프로필 정보 없음"
	}
	b, err := json.MarshalIndent(profile, "", "  ")
	if err != nil {
		return ""
	}
	return string(b)
}

func askedText(asked []string, lang Language) string {
	if len(asked) == 0 {
		if lang == LangEn {
			return "(none yet)"
		}
		return "(아직 없음)"
	}
	var b strings.Builder
	for i, q := range asked {
		fmt.Fprintf(&b, "%d. %s\n", i+1, q)
	}
	return strings.TrimRight(b.String(), "\n")
}

func nextQuestionPrompt(req SelectRequest, pools *questionPools) string {
	var buf bytes.Buffer
	if req.Language == LangEn {
		writeSection(&buf, "PERSONA",
			"You are Deary's warm editor—kind, intellectually curious, with just the right distance. "+
				"You help the user reflect on their day through CONCRETE, THEMED questions. "+
				"Never vague (\"How was your day?\", \"Anything special?\"). "+
				"Use soft endings: \"I'm curious...\", \"I'd love to hear...\". Offer choices when natural. "+
				"No excessive emojis. End sentences gently. All questions are about today only.")
		writeSection(&buf, "QUESTION_POOL",
			"Choose a question from this pool, or create a natural variation within the SAME theme. Do NOT invent generic questions.\n"+
				"Theme 1 (Morning): "+strings.Join(pools.morning, " | ")+"\n"+
				"Theme 2 (Highlight/Events): "+strings.Join(pools.highlight, " | ")+"\n"+
				"Theme 3 (Food/Taste): "+strings.Join(pools.food, " | ")+"\n"+
				"Theme 4 (Work/School): "+strings.Join(pools.work, " | ")+"\n"+
				"Theme 5 (Relationships): "+strings.Join(pools.relationships, " | "))
		writeSection(&buf, "RULES",
			"- Pick a theme not yet covered (or least covered). Vary themes.\n"+
				"- Use the pool question or a natural variation within its theme.\n"+
				"- Your new question MUST differ from every already-asked question; if similar to any, pick another.")
		writeSection(&buf, "ALREADY_ASKED", askedText(req.AskedTexts, req.Language))
		writeSection(&buf, "CONTEXT", nonEmptyOr(req.Answers.ContextText(), "(First question)"))
		writeSection(&buf, "PROFILE", profileText(req.Profile, req.Language))
		writeSection(&buf, "PROGRESS", fmt.Sprintf("%d questions completed.", req.TurnCount))
		if strings.TrimSpace(req.SkippedText) != "" {
			writeSection(&buf, "SKIP", fmt.Sprintf("User skipped: %q - pick a COMPLETELY different theme/question.", req.SkippedText))
		}
		writeSection(&buf, "END_CRITERIA", "shouldEnd: true if 4+ questions done and main themes covered; else false.")
		writeSection(&buf, "OUTPUT_FORMAT", `Output ONLY this JSON:
{"question": "One question from the pool or a natural variation", "shouldEnd": false}`)
		return strings.TrimSpace(buf.String()) + "\n"
	}

	writeSection(&buf, "PERSONA",
		"너는 Deary의 다정한 에디터야. 친절하고 지적인 잡지 에디터처럼 행동해. "+
			"말투: ~했군요, ~했는지 궁금해요, ~드셨어요? (청유형). 과도한 이모지, 'ㅋㅋ' 금지. "+
			"공감만 하지 말고 호기심을 가지고 구체적인 사실을 물어봐. 선택지 제시 가능. 모든 질문은 오늘에 대해서만.")
	writeSection(&buf, "QUESTION_POOL",
		"풀에서 질문을 고르거나 같은 테마 안에서 자연스럽게 변형. 풀 밖의 일반적 질문 금지.\n"+
			"테마1 (하루의 시작): "+strings.Join(pools.morning, " | ")+"\n"+
			"테마2 (강렬한 기억): "+strings.Join(pools.highlight, " | ")+"\n"+
			"테마3 (미각과 휴식): "+strings.Join(pools.food, " | ")+"\n"+
			"테마4 (사회생활/성취): "+strings.Join(pools.work, " | ")+"\n"+
			"테마5 (관계와 대화): "+strings.Join(pools.relationships, " | "))
	writeSection(&buf, "RULES",
		"- 아직 다루지 않은 테마를 골라라. \"오늘 어땠어?\", \"특별한 일 없었어?\" 금지.\n"+
			"- 새 질문은 이미 한 질문과 달라야 함. 비슷하면 다른 걸 골라라.")
	writeSection(&buf, "ALREADY_ASKED", askedText(req.AskedTexts, req.Language))
	writeSection(&buf, "CONTEXT", nonEmptyOr(req.Answers.ContextText(), "(첫 질문)"))
	writeSection(&buf, "PROFILE", profileText(req.Profile, req.Language))
	writeSection(&buf, "PROGRESS", fmt.Sprintf("현재 %d개 질문 완료.", req.TurnCount))
	if strings.TrimSpace(req.SkippedText) != "" {
		writeSection(&buf, "SKIP", fmt.Sprintf("사용자가 스킵함: %q - 완전히 다른 테마/질문을 골라라.", req.SkippedText))
	}
	writeSection(&buf, "END_CRITERIA", "4개 이상 질문했고 주요 테마가 나왔으면 shouldEnd: true, 아니면 false.")
	writeSection(&buf, "OUTPUT_FORMAT", `반드시 JSON만 출력:
{"question": "풀에서 고른 질문 또는 자연스러운 변형", "shouldEnd": false}`)
	return strings.TrimSpace(buf.String()) + "\n"
}

func followupPrompt(req FollowupRequest) string {
	var buf bytes.Buffer
	if req.Language == LangEn {
		writeSection(&buf, "PERSONA",
			"You are Deary's warm editor. Your follow-up probes DEEPER into what the user just said with CONCRETE, SPECIFIC questions. "+
				"Never generic (\"How did you feel?\", \"Tell me more\"). Don't over-empathize; show curiosity about concrete FACTS. "+
				"Offer choices when natural: \"Was it A? Or B?\". All questions about today only.")
		writeSection(&buf, "CRITICAL",
			"- Your follow-up MUST reference something SPECIFIC the user just said (person, place, activity, object).\n"+
				"- Pick ONE concrete element from their answer and ask a question that ONLY fits that answer.\n"+
				"- If facts came without feelings, ask a REFLECTIVE question that invites them back to the moment. NEVER ask directly \"How did you feel?\".")
		writeSection(&buf, "STOP_WHEN",
			"- The user said they don't know / can't express it.\n"+
				"- The user already gave a feeling—don't push for \"more specific\" feelings.\n"+
				"- The answer is rich with feelings and details.")
		writeSection(&buf, "FORBIDDEN",
			"- Generic questions that could apply to any answer.\n"+
				"- \"Could you tell me more?\", \"Please elaborate\".\n"+
				"- Direct emotion questions: \"How did you feel?\", \"How was your mood?\".\n"+
				"- Questions that ignore what the user actually said.")
		writeSection(&buf, "CONTEXT", nonEmptyOr(req.AllAnswers.ContextText(), "(No context yet)"))
		writeSection(&buf, "CURRENT_EXCHANGE", fmt.Sprintf("Question: %q\nAnswer: %q", req.Question, req.Answer))
		writeSection(&buf, "OUTPUT_FORMAT", `Output ONLY this JSON:
{"needsFollowup": true, "followupQuestion": "A question that references something SPECIFIC from the user's answer—generated for this answer only, not from a template"}`)
		return strings.TrimSpace(buf.String()) + "\n"
	}

	writeSection(&buf, "PERSONA",
		"너는 Deary의 다정한 에디터야. 추가 질문은 사용자가 방금 한 답변을 호기심을 가지고 구체적인 '사실'을 파는 질문이어야 해. "+
			"말투: ~했군요, ~했는지 궁금해요 (청유형). 과도한 이모지 금지. 선택지 제시: \"참치김밥? 아니면 기본?\". 모든 질문은 오늘에 대해서만.")
	writeSection(&buf, "절대_규칙",
		"- 사용자가 방금 말한 내용(사람, 장소, 일, 물건)을 반드시 직접 언급.\n"+
			"- 이 답변에만 통하는 질문. \"기분이 어땠나요?\", \"더 말해줘\" 같은 추상적 질문 금지.\n"+
			"- 사실만 말하고 감정이 없으면 그 순간을 돌아보게 하는 질문. 절대 직접 감정을 묻지 말 것.")
	writeSection(&buf, "그만_물어볼_때",
		"- 사용자가 모른다/말하기 어렵다고 함.\n"+
			"- 사용자가 이미 감정을 말함—\"더 구체적으로\" 감정을 묻지 말 것.\n"+
			"- 감정·구체적 묘사가 충분한 풍부한 답변.")
	writeSection(&buf, "CONTEXT", nonEmptyOr(req.AllAnswers.ContextText(), "(아직 맥락 없음)"))
	writeSection(&buf, "현재_질문과_답변", fmt.Sprintf("질문: %q\n답변: %q", req.Question, req.Answer))
	writeSection(&buf, "OUTPUT_FORMAT", `반드시 JSON만 출력:
{"needsFollowup": true, "followupQuestion": "사용자 답변에 나온 구체적인 내용을 직접 언급하면서, 이 답변에만 통하는 질문"}`)
	return strings.TrimSpace(buf.String()) + "\n"
}

func profilePrompt(answers AnswerSet, existing map[string]any, lang Language) string {
	existingJSON, _ := json.Marshal(existing)
	var buf bytes.Buffer
	if lang == LangEn {
		writeSection(&buf, "PURPOSE",
			"Extract profile/persona info from the user's answers. Save anything worth remembering for future conversations.")
		writeSection(&buf, "EXISTING_PROFILE", string(existingJSON))
		writeSection(&buf, "ANSWERS", answers.ContextText())
		writeSection(&buf, "FIELDS",
			"- occupation: job, student status (e.g. \"college student\", \"office worker\")\n"+
				"- education: school, major, grade if mentioned\n"+
				"- hobbies: ONLY add items mentioned REPEATEDLY (2+ times) across answers. One-off mentions do NOT count.\n"+
				"- friends: array of people mentioned (names or relationships like \"colleague\", \"roommate\")\n"+
				"- interests: ONLY add items mentioned REPEATEDLY (2+ times). Single mention = not an interest.\n"+
				"- lifestyle: daily routine, habits\n"+
				"- relationships: family, partner, etc.\n"+
				"- ageGroup: \"teen\", \"20s\", \"30s\" etc.\n"+
				"- aiName, aiTone: only if user explicitly sets (else null, preserve existing)")
		writeSection(&buf, "OUTPUT_FORMAT",
			"Output JSON only. Use null for unknown. For arrays, ADD new items to existing, don't replace. Merge with existing profile.")
		return strings.TrimSpace(buf.String()) + "\n"
	}
	writeSection(&buf, "PURPOSE",
		"사용자 답변에서 프로필(페르소나) 정보를 추출해. 나중에 연관 질문을 위해 기록할 만한 정보를 수집해.")
	writeSection(&buf, "기존_프로필", string(existingJSON))
	writeSection(&buf, "답변", answers.ContextText())
	writeSection(&buf, "추출_항목",
		"- occupation: 직업, 학생 여부 (예: \"대학생\", \"직장인\")\n"+
			"- education: 학교, 전공, 학년 등\n"+
			"- hobbies: 반복적으로 언급된 것만 취미로 추가 (2회 이상). 한 번만 말한 건 취미 아님.\n"+
			"- friends: 언급된 사람 배열 (이름 또는 \"동료\", \"룸메이트\" 등 관계)\n"+
			"- interests: 반복적으로 언급된 것만 (2회 이상). 1회 언급 = 관심사 아님\n"+
			"- lifestyle: 일상, 습관\n"+
			"- relationships: 가족, 연인 등\n"+
			"- ageGroup: \"10대\", \"20대\", \"30대\" 등\n"+
			"- aiName, aiTone: 사용자가 직접 설정한 경우만 (없으면 null, 기존 유지)")
	writeSection(&buf, "OUTPUT_FORMAT",
		"JSON만 출력. 모르면 null. 배열은 기존에 새 항목 추가, 교체하지 말 것. 기존 프로필과 병합.")
	return strings.TrimSpace(buf.String()) + "\n"
}

func reviewPrompt(answers AnswerSet, lang Language) string {
	var buf bytes.Buffer
	if lang == LangEn {
		writeSection(&buf, "PERSONA",
			"You are a warm editor who reviews whether the user's answers are sufficient before writing a diary. "+
				"When asking a question, show curiosity about concrete facts, not just empathy.")
		writeSection(&buf, "REVIEW_CRITERIA",
			"1. Flow: Is there a flow from morning to evening? Are main activities mentioned?\n"+
				"2. Depth: Beyond \"good\" or \"tired\", is there a reason why?\n"+
				"3. Detail: Are there specific people, places, times, situations?\n"+
				"4. Story: Would reading this later bring the day back vividly?")
		writeSection(&buf, "ANSWERS", answers.ContextText())
		writeSection(&buf, "RULES",
			"- If 2 or fewer answers or all under 10 chars → needsMoreInfo: true\n"+
				"- If only emotions and no concrete events → needsMoreInfo: true\n"+
				"- If rich enough for a diary → needsMoreInfo: false")
		writeSection(&buf, "OUTPUT_FORMAT", `Output ONLY this JSON:
{"needsMoreInfo": true/false, "question": "A natural follow-up question"}`)
		return strings.TrimSpace(buf.String()) + "\n"
	}
	writeSection(&buf, "PERSONA",
		"너는 일기를 작성하기 전에 사용자의 답변이 충분한지 마지막으로 검토하는 '다정한 에디터'야. "+
			"질문 시 공감만 하지 말고 구체적인 사실을 물어봐.")
	writeSection(&buf, "검토_기준",
		"1. 하루의 흐름: 아침부터 저녁까지의 흐름이 보이는가?\n"+
			"2. 감정의 깊이: 왜 그랬는지 이유가 있는가?\n"+
			"3. 구체성: 사람, 장소, 시간, 상황 등 구체적인 정보가 있는가?\n"+
			"4. 이야기성: 나중에 이 일기를 읽었을 때 그날이 생생하게 떠오를 수 있을까?")
	writeSection(&buf, "사용자_답변", answers.ContextText())
	writeSection(&buf, "판단_규칙",
		"- 답변이 2개 이하거나 모두 10자 미만이면 → needsMoreInfo: true\n"+
			"- 감정만 있고 구체적 사건이 없으면 → needsMoreInfo: true\n"+
			"- 일기로 쓰기에 충분히 풍부하면 → needsMoreInfo: false")
	writeSection(&buf, "OUTPUT_FORMAT", `반드시 아래의 JSON 형식으로만 응답해:
{"needsMoreInfo": true/false, "question": "부족한 부분을 채울 자연스러운 질문"}`)
	return strings.TrimSpace(buf.String()) + "\n"
}

func diaryPrompt(answers AnswerSet, lang Language) string {
	var buf bytes.Buffer
	if lang == LangEn {
		writeSection(&buf, "PERSONA",
			"You are an 'honest recorder' who summarizes the user's day based on their answers.")
		writeSection(&buf, "RULES",
			"1. Style: Use past tense (\"~ed\", \"was ~\"). (e.g., ate, was happy, felt tired)\n"+
				"2. Fact-based: Never invent info (place, weather, people) the user didn't mention.\n"+
				"3. Simple: Use easy words. No abstract or academic phrases.\n"+
				"4. Flow: Connect answers in a natural time order.\n"+
				"5. Emotion: Reflect the user's feelings and experiences vividly.")
		writeSection(&buf, "USER_ANSWERS", answers.ContextText())
		writeSection(&buf, "OUTPUT_FORMAT", "Write the diary body only.")
		return strings.TrimSpace(buf.String()) + "\n"
	}
	writeSection(&buf, "PERSONA",
		"너는 사용자의 답변을 바탕으로 오늘 하루를 정리해주는 '정직한 기록가'야.")
	writeSection(&buf, "작성_규칙",
		"1. 문체: 반드시 '~했다', '~였다'와 같은 평어체(일기체)로 작성할 것.\n"+
			"2. 사실 근거: 사용자가 직접 말하지 않은 정보는 절대로 지어내지 말 것.\n"+
			"3. 담백함: 현학적이거나 추상적인 표현은 절대로 쓰지 말 것.\n"+
			"4. 연결성: 답변들을 시간 순서에 따라 자연스러운 문장으로 연결할 것.\n"+
			"5. 감정 표현: 사용자가 말한 감정과 경험을 생생하게 살려서 작성할 것.")
	writeSection(&buf, "사용자_답변_데이터", answers.ContextText())
	writeSection(&buf, "OUTPUT_FORMAT", "일기 본문만 작성해.")
	return strings.TrimSpace(buf.String()) + "\n"
}

func nonEmptyOr(s, alt string) string {
	if strings.TrimSpace(s) == "" {
		return alt
	}
	return s
}
