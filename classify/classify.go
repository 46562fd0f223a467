// Package classify routes an incoming question to the right answering path.
// Keyword tables cover English and Arabic; the checks are pure string scans
// with no model call, so classification is instant and deterministic.
package classify

import "strings"

// Category labels what a question is about.
type Category string

const (
	CategoryFiqh    Category = "fiqh"
	CategoryQuran   Category = "quran"
	CategoryHadith  Category = "hadith"
	CategoryGeneral Category = "general"
)

var fiqhKeywordsEN = []string{
	"ruling", "rulings", "permissible", "haram", "halal", "allowed",
	"forbidden", "makruh", "mustahab", "wajib", "fard", "sunnah",
	"madhab", "maliki", "fiqh", "jurisprudence", "islamic law",
	"can i", "is it allowed", "is it permissible", "what is the ruling",
	"how to pray", "how to perform", "wudu", "ghusl", "tayammum",
	"zakat", "nisab", "hajj", "umrah", "fast", "fasting", "sawm",
	"marriage", "divorce", "inheritance", "business", "transaction",
	"interest", "riba", "marriage contract", "wali", "mahr",
}

var fiqhKeywordsAR = []string{
	"حكم", "أحكام", "حلال", "حرام", "مكروه", "مستحب", "واجب", "فرض",
	"سنة", "مذهب", "المالكية", "فقه", "شرع", "يجوز", "جائز", "ممنوع",
	"كيف أصلي", "كيفية", "وضوء", "غسل", "تيمم", "زكاة", "نصاب",
	"حج", "عمرة", "صيام", "صوم", "رمضان", "نكاح", "زواج", "طلاق",
	"ميراث", "معاملات", "بيع", "شراء", "ربا", "فوائد", "ولي", "مهر",
}

var quranKeywords = []string{
	"surah", "sura", "ayah", "verse", "quran", "qur'an", "recite",
	"سورة", "آية", "قرآن", "اتل", "قراءة", "فاتحة", "بقرة", "إخلاص",
}

var hadithKeywords = []string{
	"hadith", "hadis", "narration", "prophet said", "رسول الله",
	"حديث", "أحاديث", "روى", "رواية", "النبي", "صلى الله عليه وسلم",
}

var sourceKeywords = []string{
	"source", "sources", "citation", "reference", "where from",
	"من أين", "مصدر", "مصادر", "مرجع", "دليل", "أدلة",
	"show source", "cite", "proof", "evidence",
}

// IsFiqhQuestion reports whether the question concerns jurisprudence, plus a
// coarse category for everything else. Categories are checked in priority
// order: fiqh, then Quran, then hadith, with general as the fallback.
func IsFiqhQuestion(question string) (bool, Category) {
	lower := strings.ToLower(question)

	if containsAny(lower, fiqhKeywordsEN) || containsAny(question, fiqhKeywordsAR) {
		return true, CategoryFiqh
	}
	if containsAny(lower, quranKeywords) {
		return false, CategoryQuran
	}
	if containsAny(lower, hadithKeywords) {
		return false, CategoryHadith
	}
	return false, CategoryGeneral
}

// WantsSources reports whether the user explicitly asked for citations.
func WantsSources(question string) bool {
	return containsAny(strings.ToLower(question), sourceKeywords)
}

func containsAny(s string, keywords []string) bool {
	for _, keyword := range keywords {
		if strings.Contains(s, keyword) {
			return true
		}
	}
	return false
}

// ResponseInstructions returns the system framing for the answering model,
// picked by question type and response language.
func ResponseInstructions(isFiqh bool, category Category, language string) string {
	if isFiqh {
		if strings.EqualFold(language, "arabic") {
			return "You are an Islamic scholar specialized in comparative fiqh across the four madhabs.\n" +
				"Answer based on the positions of the relevant school and cite classical sources such as Al-Risala and Mukhtasar Khalil when relevant."
		}
		return "You are an Islamic scholar specialized in comparative fiqh across the four madhabs.\n" +
			"Answer based on the positions of the relevant school and cite sources when relevant."
	}
	return "You are a knowledgeable Islamic scholar.\n" +
		"Answer based on Quran and authentic Hadith. Do NOT mention specific madhabs unless asked."
}
