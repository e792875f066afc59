// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

// Package ipa generates broad IPA transcriptions for personal names by
// querying an OpenAI-compatible chat completion endpoint with best-of-N
// sampling and plurality voting.
package ipa

// systemPrompt instructs the model to emit a single broad transcription
// in /slashes/ with no commentary.
const systemPrompt = `You are an expert phonetician and linguist specializing in proper name transcription. Given a personal name, provide its broad IPA transcription.

Rules:
- Infer the most likely source language from orthography and script.
- Use broad (phonemic) transcription in /slashes/.
- For multi-word names, separate words with spaces inside the slashes.
- Preserve phonological features of the source language (tones, pharyngeals, retroflex, gemination, etc.).
- Return ONLY the IPA transcription. No explanation, no alternatives.`

type fewShotExample struct {
	Name string
	IPA  string
}

// fewShotExamples cover the major scripts and language families in the
// sanctions data. Each demonstrates a specific phonological or
// orthographic challenge.
var fewShotExamples = []fewShotExample{
	// Cyrillic (the largest non-Latin block in sanctions data)
	// Russian: palatalization, vowel reduction, voiced/voiceless assimilation
	{"Владимир Путин", "/vlɐˈdʲimʲɪr ˈputʲɪn/"},
	// Ukrainian: distinct from Russian, /ɦ/ not /ɡ/, soft consonants
	{"Олександр Костенко", "/ɔlɛkˈsɑndr kɔsˈtɛnkɔ/"},
	// Belarusian: dzekanne/tsekanne, distinct vowel system
	{"Аляксандр Лукашэнка", "/alʲakˈsandr lukaˈʂɛnka/"},

	// Arabic (second largest non-Latin)
	// Pharyngeals, emphatics, long vowels, sun-letter assimilation
	{"محمد بن سلمان", "/muˈħammad bin salˈmaːn/"},
	// Ayin, definite article assimilation
	{"عبد الرحمن", "/ʕabd ar.raħˈmaːn/"},

	// CJK
	// Mandarin: aspirated/unaspirated distinction, tonal (not marked in broad IPA)
	{"习近平", "/ɕi tɕin pʰiŋ/"},
	// Japanese (Kanji): pitch accent, mora-timed, flap /ɾ/
	{"山本太郎", "/jamamato taɾoː/"},

	// Hangul
	// Korean: tensification, nasalization, three-way laryngeal contrast
	{"김정은", "/kim tɕɔŋ ɯn/"},

	// Devanagari
	// Hindi: retroflex consonants, breathy voiced stops, schwa deletion
	{"नरेन्द्र मोदी", "/nəˈɾeːndɾə ˈmoːdiː/"},

	// Hebrew
	// Stress patterns, pharyngeals reduced in Modern Hebrew
	{"בנימין נתניהו", "/binjaˈmin netanˈjahu/"},

	// Georgian
	// Ejectives, harmonic clusters
	{"ბიძინა ივანიშვილი", "/biˈd͡zina ivaniʃˈvili/"},

	// Armenian
	// Aspirated/ejective stops, Western vs Eastern pronunciation
	{"Նիկոլ Փաշինյան", "/niˈkɔl pʰaʃinˈjan/"},

	// Thai
	// Aspiration contrast, tonal (not marked in broad IPA for names)
	{"ทักษิณ ชินวัตร", "/tʰaksin tɕʰinnaˈwat/"},

	// Latin script, various source languages
	// French: nasalized vowels, silent consonants, uvular /ʁ/
	{"Jean-Pierre Dupont", "/ʒɑ̃ pjɛʁ dyˈpɔ̃/"},
	// German: uvular /ʁ/, front rounded vowels, final devoicing
	{"Friedrich Müller", "/ˈfʁiːdʁɪç ˈmʏlɐ/"},
	// Spanish: fricative allophones, tap /ɾ/, trill /r/
	{"José García López", "/xoˈse ɣaɾˈθi.a ˈlopeθ/"},
	// Polish: palatal series, specific sibilant inventory
	{"Wojciech Kowalski", "/ˈvɔjtɕɛx kɔˈvalskʲi/"},
	// English: stress-timed, rhotic
	{"Robert Johnson", "/ˈɹɑbɚt ˈdʒɑnsən/"},
	// Romanized Arabic name in Latin script, model must infer Arabic phonology
	{"Abdulaziz al-Rashid", "/ʕabdulʕaˈziːz ar.raˈʃiːd/"},
	// Romanized Chinese name, model must infer Mandarin phonology
	{"Zhang Wei", "/tʂɑŋ weɪ/"},
}

// Message is one chat turn in an OpenAI-compatible request.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// BuildMessages assembles the chat messages for a name-to-IPA request:
// system prompt, the few-shot exchange, then the target name.
func BuildMessages(name string) []Message {
	messages := make([]Message, 0, 2+2*len(fewShotExamples))
	messages = append(messages, Message{Role: "system", Content: systemPrompt})
	for _, ex := range fewShotExamples {
		messages = append(messages,
			Message{Role: "user", Content: ex.Name},
			Message{Role: "assistant", Content: ex.IPA})
	}
	return append(messages, Message{Role: "user", Content: name})
}
