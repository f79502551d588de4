package extractor

import "fmt"

// carryState is the state of annotations waiting for the next declaration.
type carryState int

const (
	carryIdle carryState = iota
	carryPendingType
	carryPendingHide
)

func (s carryState) String() string {
	switch s {
	case carryPendingType:
		return "pendingType"
	case carryPendingHide:
		return "pendingHide"
	default:
		return "idle"
	}
}

type carryEvent int

const (
	evTypeOverride carryEvent = iota
	evHide
	evProperty
	evMember
	evEnd
)

type carryAction int

const (
	actNone carryAction = iota
	actStore
	actApplyType
	actApplyHide
	actFail
)

type carryTransition struct {
	next   carryState
	action carryAction
}

var carryTable = map[carryState]map[carryEvent]carryTransition{
	carryIdle: {
		evTypeOverride: {carryPendingType, actStore},
		evHide:         {carryPendingHide, actStore},
		evProperty:     {carryIdle, actNone},
		evMember:       {carryIdle, actNone},
		evEnd:          {carryIdle, actNone},
	},
	carryPendingType: {
		evTypeOverride: {carryIdle, actFail},
		evHide:         {carryIdle, actFail},
		evProperty:     {carryIdle, actApplyType},
		evMember:       {carryIdle, actFail},
		evEnd:          {carryIdle, actFail},
	},
	carryPendingHide: {
		evTypeOverride: {carryIdle, actFail},
		evHide:         {carryPendingHide, actNone},
		evProperty:     {carryIdle, actApplyHide},
		evMember:       {carryIdle, actApplyHide},
		evEnd:          {carryIdle, actNone},
	},
}

// carryover tracks QSDOC_TYPE_OVERRIDE and QSDOC_HIDE, which modify the
// declaration that follows them.
type carryover struct {
	state    carryState
	typeName string
	// doc is the comment attached to the annotation, handed on to the
	// declaration when that has none of its own.
	doc string
}

type carryResult struct {
	typeOverride string
	hide         bool
	doc          string
}

func (c *carryover) fire(ev carryEvent, arg, doc string) (carryResult, error) {
	t := carryTable[c.state][ev]

	var res carryResult
	switch t.action {
	case actStore:
		c.typeName = arg
		c.doc = doc
	case actApplyType:
		res.typeOverride = c.typeName
		res.doc = c.doc
	case actApplyHide:
		res.hide = true
	case actFail:
		err := fmt.Errorf("%w: pending %s", ErrDanglingOverride, c.state)
		c.reset()
		return res, err
	}

	c.state = t.next
	if c.state == carryIdle {
		c.typeName = ""
		c.doc = ""
	}
	return res, nil
}

func (c *carryover) reset() {
	*c = carryover{}
}
