// Package topic selects the study subject for a broadcast occasion.
package topic

import (
	"math/rand"
	"sync"
	"time"
)

// Selection is one resolved study subject.
type Selection struct {
	Topic         string
	KnowledgeArea string
}

// Source resolves the subject for a slot at a given time. Implementations
// are injected; nothing in the pipeline assumes a particular calendar scheme.
type Source interface {
	Pick(slotName string, now time.Time) Selection
}

// entry is one core curriculum unit.
type entry struct {
	topic    string
	subjects []string
}

// The commercial-pilot core curriculum. Seven base units, cycled across the
// month; the week of the month sets the depth tier.
var curriculum = []entry{
	{"응급상황 및 안전", []string{
		"Engine Failure 시 Best Glide Speed와 Landing Site 선정",
		"Spatial Disorientation 예방과 발생 시 대응방법",
		"Emergency Descent 절차와 Cabin Pressurization 문제",
		"Fire Emergency (Engine, Electrical, Cabin) 대응절차",
		"Inadvertent IMC Entry 시 절차와 예방방법",
	}},
	{"항공역학", []string{
		"Bernoulli's Principle과 실제 양력 생성 원리의 차이점",
		"Wing Loading이 항공기 성능에 미치는 영향",
		"Stall의 종류와 각각의 특성 (Power-on, Power-off, Accelerated stall)",
		"Ground Effect 현상과 이착륙 시 고려사항",
		"Adverse Yaw 현상과 조종사의 대응방법",
	}},
	{"항법", []string{
		"ILS Approach의 구성요소와 Category별 최저기상조건",
		"GPS WAAS와 기존 GPS의 차이점 및 정밀접근 가능성",
		"VOR Station Check 절차와 정확도 확인 방법",
		"Dead Reckoning과 Pilotage의 실제 적용",
		"Magnetic Variation과 Deviation의 차이 및 계산법",
	}},
	{"기상학", []string{
		"Thunderstorm의 생성과정과 3단계 (Cumulus, Mature, Dissipating)",
		"Wind Shear의 종류와 조종사 대응절차",
		"Icing 조건과 Anti-ice/De-ice 시스템 작동원리",
		"Mountain Wave와 Rotor의 형성 및 위험성",
		"METAR/TAF 해석과 실제 비행계획 적용",
	}},
	{"항공기 시스템", []string{
		"Turbocharged vs Supercharged Engine의 차이점과 운용방법",
		"Electrical System 구성과 Generator/Alternator 고장 시 절차",
		"Hydraulic System의 작동원리와 백업 시스템",
		"Pitot-Static System과 관련 계기 오류 패턴",
		"Fuel System과 Fuel Management 절차",
	}},
	{"비행 규정", []string{
		"Class A, B, C, D, E Airspace의 입장 요건과 장비 요구사항",
		"사업용 조종사의 Duty Time과 Rest Requirements",
		"IFR Alternate Airport 선정 기준과 Fuel Requirements",
		"Medical Certificate의 종류별 유효기간과 제한사항",
		"Controlled Airport에서의 Communication Procedures",
	}},
	{"비행 계획 및 성능", []string{
		"Weight & Balance 계산과 CG Envelope 내 유지 방법",
		"Takeoff/Landing Performance Chart 해석과 실제 적용",
		"Density Altitude 계산과 항공기 성능에 미치는 영향",
		"Wind Triangle과 Ground Speed 계산",
		"Fuel Planning과 Reserve Fuel 요구사항",
	}},
}

var tiers = []string{"기초", "중급", "고급", "전문", "종합"}

// Units returns the base curriculum topics in cycle order.
func Units() []string {
	out := make([]string, len(curriculum))
	for i, e := range curriculum {
		out[i] = e.topic
	}
	return out
}

// Calendar keys topic selection to the day of the month: the base unit
// cycles weekly and the tier deepens as the month progresses.
type Calendar struct {
	mu  sync.Mutex
	rng *rand.Rand
}

func NewCalendar() *Calendar {
	return &Calendar{rng: rand.New(rand.NewSource(time.Now().UnixNano()))}
}

func (c *Calendar) Pick(slotName string, now time.Time) Selection {
	day := now.Day() // 1..31
	base := curriculum[(day-1)%len(curriculum)]
	tierIdx := (day - 1) / 7
	if tierIdx >= len(tiers) {
		tierIdx = len(tiers) - 1
	}

	c.mu.Lock()
	subject := base.subjects[c.rng.Intn(len(base.subjects))]
	c.mu.Unlock()

	return Selection{
		Topic:         tiers[tierIdx] + " " + base.topic,
		KnowledgeArea: subject,
	}
}

// Fixed always returns the same selection; used for slots with a topic
// override and for ad-hoc quizzes on a user-chosen subject.
type Fixed struct {
	Selection Selection
}

func (f Fixed) Pick(string, time.Time) Selection { return f.Selection }
