package models

// Phase представляет возможные шаги диалога с пользователем
type Phase string

const (
	PhaseUnset               Phase = "unset"
	PhaseRegistrationName    Phase = "registration_name"
	PhaseRegistrationContact Phase = "registration_contact"
	PhaseTravelLocBegin      Phase = "travel_loc_begin"
	PhaseTravelLocEnd        Phase = "travel_loc_end"
	PhaseTravelDetails       Phase = "travel_details"
	PhaseTravelStart         Phase = "travel_start"
)

// InRegistration сообщает, находится ли пользователь в процессе регистрации
func (p Phase) InRegistration() bool {
	return p == PhaseRegistrationName || p == PhaseRegistrationContact
}

// InTravel сообщает, идет ли оформление поездки.
// Scratch валиден только в этих фазах.
func (p Phase) InTravel() bool {
	switch p {
	case PhaseTravelLocBegin, PhaseTravelLocEnd, PhaseTravelDetails, PhaseTravelStart:
		return true
	}
	return false
}

// Scratch — временные данные диалога (черновик поездки).
// Очищается при любом переходе в PhaseUnset или в регистрацию.
type Scratch struct {
	Name string

	LocBegin *Location
	LocEnd   *Location

	PassengerCount int
	TravelClass    string
	HasFemale      bool
	DistanceKm     float64
	Price          int64

	// LastRender — отпечаток последнего отрисованного состояния сводки,
	// чтобы не отправлять edit без изменений
	LastRender string
}

// ConversationState — состояние диалога одного пользователя
type ConversationState struct {
	Phase   Phase
	Scratch Scratch
}
