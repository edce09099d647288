package telegram

// User-facing copy. HTML parse mode throughout.

const welcomeText = `✈️ <b>항공지식 알림 봇에 오신 것을 환영합니다!</b>

🎯 <b>기능</b>
• 하루 3번 (오전 9시, 오후 2시, 저녁 8시) 항공지식 퀴즈 발송
• 사업용 조종사 수준의 전문 지식 제공
• 날짜에 따라 주제가 순환하고 주차가 지날수록 난이도가 깊어지는 학습 과정

📚 <b>핵심 학습 주제 (매일 순환)</b>
• 응급상황 및 안전
• 항공역학
• 항법
• 기상학
• 항공기 시스템
• 비행 규정
• 비행 계획 및 성능

난이도는 월초 기초 단계에서 시작해 월말 종합 단계까지 주 단위로 올라갑니다.

🚀 알림이 설정되었습니다! 매일 정해진 시간에 항공지식을 받아보세요.

<b>명령어</b>
/stop - 알림 중지
/status - 현재 상태 확인
/now - 지금 즉시 학습 메시지 받기
/quiz - AI가 생성하는 4지선다 문제 받기
/quiz [주제] - 특정 주제로 맞춤 퀴즈 생성`

const goodbyeText = `✅ 알림이 중지되었습니다. /start 명령어로 다시 시작할 수 있습니다.`

const helpText = `<b>명령어</b>
/start - 알림 구독
/stop - 알림 중지
/status - 현재 상태 확인
/now - 지금 즉시 학습 메시지 받기
/quiz [주제] - 4지선다 문제 받기`

const (
	msgNotSubscribed = `구독 중이 아닙니다. /start 명령어로 시작할 수 있습니다.`
	msgProvidersDown = `⚠️ 지금은 문제를 만들 수 없습니다. 모든 생성 백엔드가 응답하지 않습니다. 잠시 후 다시 시도해 주세요.`
	msgInternalError = `⚠️ 처리 중 오류가 발생했습니다. 잠시 후 다시 시도해 주세요.`
)
