package domain

import "time"

// ChallengeKind names the 3DS variant a processor asked for.
type ChallengeKind string

const (
	ChallengeBasic    ChallengeKind = "basic"
	ChallengeExtended ChallengeKind = "extended"
	ChallengeThreeDS2 ChallengeKind = "threeds2"
)

// Challenge is implemented only by ACSChallenge, FingerprintChallenge and
// RedirectChallenge, so a response can never carry more than one variant.
type Challenge interface {
	Kind() ChallengeKind
	Form() ChallengeForm
	challenge()
}

// ChallengeForm is what the UI auto-posts into a frame. Hidden frames are
// 0x0; SubmitAfter tells the UI how long to wait before signalling completion.
type ChallengeForm struct {
	Kind        ChallengeKind     `json:"type"`
	Action      string            `json:"action"`
	Method      string            `json:"method"`
	Fields      map[string]string `json:"fields"`
	Hidden      bool              `json:"hidden"`
	SubmitAfter time.Duration     `json:"-"`
}

// ACSChallenge is the basic 3DS redirect to the issuer's ACS.
type ACSChallenge struct {
	ACSURL  string
	PaReq   string
	MD      string
	TermURL string
}

func (ACSChallenge) Kind() ChallengeKind { return ChallengeBasic }
func (ACSChallenge) challenge()          {}

func (c ACSChallenge) Form() ChallengeForm {
	return ChallengeForm{
		Kind:   ChallengeBasic,
		Action: c.ACSURL,
		Method: "POST",
		Fields: map[string]string{
			"PaReq":   c.PaReq,
			"MD":      c.MD,
			"TermUrl": c.TermURL,
		},
	}
}

// FingerprintChallenge is the extended 3DS device fingerprinting step.
// SettleDelay is the wait between loading the hidden frame and signalling completion.
type FingerprintChallenge struct {
	IframeURL   string
	MethodData  string
	SettleDelay time.Duration
}

func (FingerprintChallenge) Kind() ChallengeKind { return ChallengeExtended }
func (FingerprintChallenge) challenge()          {}

func (c FingerprintChallenge) Form() ChallengeForm {
	return ChallengeForm{
		Kind:   ChallengeExtended,
		Action: c.IframeURL,
		Method: "POST",
		Fields: map[string]string{
			"threeDSMethodData": c.MethodData,
		},
		Hidden:      true,
		SubmitAfter: c.SettleDelay,
	}
}

// RedirectChallenge is the 3DS2 challenge window.
type RedirectChallenge struct {
	URL         string
	CReq        string
	SessionData string
}

func (RedirectChallenge) Kind() ChallengeKind { return ChallengeThreeDS2 }
func (RedirectChallenge) challenge()          {}

func (c RedirectChallenge) Form() ChallengeForm {
	return ChallengeForm{
		Kind:   ChallengeThreeDS2,
		Action: c.URL,
		Method: "POST",
		Fields: map[string]string{
			"creq":               c.CReq,
			"threeDSSessionData": c.SessionData,
		},
	}
}

// SameChallenge reports whether two challenges are the same variant with the same payload.
func SameChallenge(a, b Challenge) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	if fa, ok := a.(FingerprintChallenge); ok {
		if fb, ok := b.(FingerprintChallenge); ok {
			return fa.IframeURL == fb.IframeURL && fa.MethodData == fb.MethodData
		}
		return false
	}
	return a == b
}
