package checkout

import (
	"github.com/robertarktes/bootcamp-booking/internal/domain"
)

type Step int

const (
	StepParticipant Step = iota + 1
	StepPayment
)

func (s Step) String() string {
	switch s {
	case StepParticipant:
		return "collecting_participant"
	case StepPayment:
		return "awaiting_payment"
	}
	return "unknown"
}

// Form is the two-step checkout: participant details, then terms and
// payment. Entered values survive validation failures and Back.
type Form struct {
	step        Step
	participant domain.Participant
	acceptTerms bool
	newsletter  bool
}

func NewForm() *Form {
	return &Form{step: StepParticipant}
}

func (f *Form) Step() Step {
	return f.step
}

func (f *Form) Participant() domain.Participant {
	return f.participant
}

// SubmitParticipant stores p and moves to the payment step when it is valid.
func (f *Form) SubmitParticipant(p domain.Participant) error {
	f.participant = p.Normalize()
	if err := f.participant.Validate(); err != nil {
		return err
	}
	f.step = StepPayment
	return nil
}

func (f *Form) Back() {
	f.step = StepParticipant
}

// Submit finalises the form and returns the participant to charge for.
func (f *Form) Submit(acceptTerms, newsletter bool) (domain.Participant, error) {
	f.acceptTerms = acceptTerms
	f.newsletter = newsletter
	if f.step != StepPayment {
		return domain.Participant{}, domain.Invalid("participant details must be submitted first")
	}
	if !acceptTerms {
		return domain.Participant{}, &domain.ValidationError{
			Message: "terms and conditions must be accepted",
			Fields:  map[string]string{"acceptTerms": "this field is required"},
		}
	}
	return f.participant, nil
}

func (f *Form) Newsletter() bool {
	return f.newsletter
}
