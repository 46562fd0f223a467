package fiqh

import (
	"context"
	"strings"

	"github.com/h9-tec/al-muwatta-ai/common/logger"
	"github.com/h9-tec/al-muwatta-ai/schema"
)

// SeedDocument is one curated text used to bootstrap an empty knowledge base
// before full ingestion from primary sources is configured.
type SeedDocument struct {
	Topic      string
	Madhab     string
	Category   string
	Source     string
	References []string
	Text       string
}

// SeedCorpus returns the curated bootstrap texts for all four schools.
func SeedCorpus() []SeedDocument {
	return []SeedDocument{
		{
			Topic:      "The Five Pillars in Maliki Fiqh",
			Madhab:     "maliki",
			Category:   "ibadah",
			Source:     "Maliki Fiqh Compilation",
			References: []string{"Al-Risala", "Al-Muwatta"},
			Text: `# The Five Pillars of Islam in Maliki Fiqh

## 1. Shahada (Declaration of Faith)
The Shahada must be pronounced correctly with understanding of its meaning.

## 2. Salah (Prayer)
Five daily prayers are obligatory. The Maliki school has specific rulings on
qunut, isti'adhah, and hand placement. Jumu'ah is obligatory for male Muslims.

## 3. Zakat (Obligatory Charity)
Nisab must be met; 2.5% on savings held for one lunar year, with specific
rules for agricultural products and livestock.

## 4. Sawm (Fasting)
Fasting during Ramadan is obligatory, with Maliki positions on what breaks
the fast and rules for making up missed fasts.

## 5. Hajj (Pilgrimage)
Obligatory once in a lifetime if able, with specific Maliki rulings on the
rituals and the conditions of obligation.`,
		},
		{
			Topic:      "Wudu (Ablution) in Maliki Fiqh",
			Madhab:     "maliki",
			Category:   "taharah",
			Source:     "Maliki Fiqh Compilation",
			References: []string{"Al-Risala", "Mukhtasar Khalil"},
			Text: `# Wudu in Maliki Fiqh

## Obligations (Fard)
Intention, washing the face, washing the arms to the elbows, wiping the
entire head, washing the feet to the ankles, continuity (muwalah), and
order (tartib).

## Sunnan
Using siwak, washing hands three times, rinsing the mouth (madmadah), and
sniffing water into the nose (istinshaq).

## Unique Maliki Positions
Touching one's spouse does not break wudu. Bleeding does not break wudu.
Vomiting does not break wudu.`,
		},
		{
			Topic:      "Prayer (Salah) Specific Rulings in Maliki Madhab",
			Madhab:     "maliki",
			Category:   "salah",
			Source:     "Maliki Fiqh Compilation",
			References: []string{"Al-Risala", "Al-Mudawwana"},
			Text: `# Prayer in Maliki Fiqh

## Hand Placement
Arms are placed at the sides (sadl), not folded on the chest. This is a
distinctive feature of Maliki prayer.

## Recitation
Basmala is not recited aloud before Al-Fatiha. The imam recites loudly in
Maghrib, Isha, and Fajr.

## Qunut
Not performed in Fajr regularly; only during calamities (Qunut al-Nawazil).

## Sujud al-Sahw
Performed after salam for an addition, before salam for an omission.`,
		},
		{
			Topic:      "The Five Pillars in Hanafi Fiqh",
			Madhab:     "hanafi",
			Category:   "ibadah",
			Source:     "Hanafi Fiqh Compilation",
			References: []string{"Al-Hidaya", "Bada'i al-Sana'i", "Radd al-Muhtar"},
			Text: `# Five Pillars in Hanafi Fiqh

General Hanafi framing of obligations and recommended acts across the
pillars, with standard evidences from Quran and Sunnah. Detailed rulings are
sourced from primary Hanafi texts like Al-Hidaya and Bada'i al-Sana'i.`,
		},
		{
			Topic:      "Wudu (Ablution) in Hanafi Fiqh",
			Madhab:     "hanafi",
			Category:   "taharah",
			Source:     "Hanafi Fiqh Compilation",
			References: []string{"Al-Hidaya", "Bada'i al-Sana'i"},
			Text: `# Wudu in Hanafi Fiqh

Obligations and recommended acts of wudu per the Hanafi school, including
canonical pillars, nullifiers, and notable positions documented in the
classical manuals. Bleeding that flows breaks wudu in the Hanafi view.`,
		},
		{
			Topic:      "Prayer (Salah) Specific Rulings in Hanafi Madhab",
			Madhab:     "hanafi",
			Category:   "salah",
			Source:     "Hanafi Fiqh Compilation",
			References: []string{"Al-Hidaya", "Radd al-Muhtar"},
			Text: `# Prayer in Hanafi Fiqh

Hands are folded below the navel (qabd). Witr is considered wajib. Qunut is
performed in Witr rather than Fajr. Overview of opening takbir, recitation,
and sujud al-sahw rules per the Hanafi manuals.`,
		},
		{
			Topic:      "The Five Pillars in Shafi'i Fiqh",
			Madhab:     "shafii",
			Category:   "ibadah",
			Source:     "Shafi'i Fiqh Compilation",
			References: []string{"Al-Umm", "Al-Majmu'", "Minhaj al-Talibin"},
			Text: `# Five Pillars in Shafi'i Fiqh

Canonical structuring of the pillars with emphasis on textual evidences as
treated in Al-Umm and Al-Majmu'.`,
		},
		{
			Topic:      "Wudu (Ablution) in Shafi'i Fiqh",
			Madhab:     "shafii",
			Category:   "taharah",
			Source:     "Shafi'i Fiqh Compilation",
			References: []string{"Al-Majmu'", "Minhaj al-Talibin"},
			Text: `# Wudu in Shafi'i Fiqh

Obligations, sunnah acts, and nullifiers with clarifications from Al-Majmu'
and commentaries on Minhaj al-Talibin. Skin contact between spouses breaks
wudu in the Shafi'i view.`,
		},
		{
			Topic:      "Prayer (Salah) Specific Rulings in Shafi'i Madhab",
			Madhab:     "shafii",
			Category:   "salah",
			Source:     "Shafi'i Fiqh Compilation",
			References: []string{"Al-Umm", "Al-Majmu'"},
			Text: `# Prayer in Shafi'i Fiqh

Hands are folded on the chest (qabd). Qunut is performed in Fajr. Basmala is
recited aloud before Al-Fatiha in audible prayers. Key procedural elements
including takbir and sujud al-sahw with relied-upon positions.`,
		},
		{
			Topic:      "The Five Pillars in Hanbali Fiqh",
			Madhab:     "hanbali",
			Category:   "ibadah",
			Source:     "Hanbali Fiqh Compilation",
			References: []string{"Al-Mughni", "Al-Insaf", "Zad al-Mustaqni'"},
			Text: `# Five Pillars in Hanbali Fiqh

High-level coverage referencing Al-Mughni and Al-Insaf as relied-upon
sources; detailed rulings expand with full ingestion.`,
		},
		{
			Topic:      "Wudu (Ablution) in Hanbali Fiqh",
			Madhab:     "hanbali",
			Category:   "taharah",
			Source:     "Hanbali Fiqh Compilation",
			References: []string{"Zad al-Mustaqni'", "Al-Mughni"},
			Text: `# Wudu in Hanbali Fiqh

Core obligations and recommended acts as treated by the Hanbali jurists,
including standard nullifiers and notable positions. Eating camel meat
breaks wudu in the Hanbali view.`,
		},
		{
			Topic:      "Prayer (Salah) Specific Rulings in Hanbali Madhab",
			Madhab:     "hanbali",
			Category:   "salah",
			Source:     "Hanbali Fiqh Compilation",
			References: []string{"Al-Insaf", "Zad al-Mustaqni'"},
			Text: `# Prayer in Hanbali Fiqh

Hands are folded below the navel or on it per relied-upon positions. Qunut
is performed in Witr. Overview of procedural rulings (takbir and sujud
al-sahw) with references to the Hanbali manuals.`,
		},
	}
}

// Seed ingests the curated corpus, skipping documents that fail. Returns the
// number of documents stored.
func (e *Engine) Seed(ctx context.Context) int {
	corpus := SeedCorpus()
	docs := make([]DocumentInput, 0, len(corpus))
	for _, seed := range corpus {
		docs = append(docs, DocumentInput{
			School: seed.Madhab,
			Text:   strings.TrimSpace(seed.Text),
			Metadata: map[string]interface{}{
				schema.MetaTopic:      seed.Topic,
				schema.MetaCategory:   seed.Category,
				schema.MetaSource:     seed.Source,
				schema.MetaReferences: strings.Join(seed.References, ","),
			},
		})
	}
	stored := e.AddDocuments(ctx, docs)
	logger.Infof("seeded %d curated documents", stored)
	return stored
}
