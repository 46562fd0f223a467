package classify

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsFiqhQuestion(t *testing.T) {
	tests := []struct {
		name     string
		question string
		isFiqh   bool
		category Category
	}{
		{"english ruling", "What is the ruling on wudu?", true, CategoryFiqh},
		{"english permissibility", "Is it permissible to combine prayers while traveling?", true, CategoryFiqh},
		{"english uppercase", "IS IT ALLOWED to eat shellfish?", true, CategoryFiqh},
		{"arabic ruling", "ما حكم الصلاة في السفر؟", true, CategoryFiqh},
		{"arabic wudu", "كيف أتوضأ؟ أريد معرفة الوضوء الصحيح", true, CategoryFiqh},
		{"quran english", "Show me Surah Al-Fatiha", false, CategoryQuran},
		{"quran arabic", "أريد قراءة سورة البقرة", false, CategoryQuran},
		{"hadith english", "What did the prophet said about kindness?", false, CategoryHadith},
		{"hadith arabic", "اذكر لي حديث عن الصبر", false, CategoryHadith},
		{"general english", "Tell me about the history of Andalusia", false, CategoryGeneral},
		{"general arabic", "من هو ابن خلدون؟", false, CategoryGeneral},
		{"empty", "", false, CategoryGeneral},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			isFiqh, category := IsFiqhQuestion(tt.question)
			assert.Equal(t, tt.isFiqh, isFiqh)
			assert.Equal(t, tt.category, category)
		})
	}
}

func TestFiqhWinsOverOtherCategories(t *testing.T) {
	// A question mentioning both fiqh and Quran terms classifies as fiqh.
	isFiqh, category := IsFiqhQuestion("What is the ruling on reciting a surah without wudu?")
	assert.True(t, isFiqh)
	assert.Equal(t, CategoryFiqh, category)
}

func TestWantsSources(t *testing.T) {
	assert.True(t, WantsSources("What is the ruling on fasting? Please cite sources."))
	assert.True(t, WantsSources("Show source for this opinion"))
	assert.True(t, WantsSources("ما الدليل على ذلك؟"))
	assert.True(t, WantsSources("من أين جاء هذا الحكم؟"))
	assert.False(t, WantsSources("What is the ruling on fasting?"))
	assert.False(t, WantsSources(""))
}

func TestResponseInstructions(t *testing.T) {
	fiqhEN := ResponseInstructions(true, CategoryFiqh, "english")
	assert.Contains(t, fiqhEN, "fiqh")

	fiqhAR := ResponseInstructions(true, CategoryFiqh, "Arabic")
	assert.Contains(t, fiqhAR, "Mukhtasar Khalil")

	general := ResponseInstructions(false, CategoryGeneral, "english")
	assert.Contains(t, general, "Quran and authentic Hadith")
	assert.NotContains(t, general, "Mukhtasar")
}
