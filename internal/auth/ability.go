package auth

import (
	"fmt"
	"strings"
)

// Action and Subject form a closed enumeration of capabilities. Permission
// rows are stored as `action:subject` names and parsed once per request into
// a typed set, never string-split at check time.
type Action string

const (
	ActionCreate Action = "create"
	ActionRead   Action = "read"
	ActionUpdate Action = "update"
	ActionDelete Action = "delete"
	ActionManage Action = "manage"
)

type Subject string

const (
	SubjectUser         Subject = "user"
	SubjectTicket       Subject = "ticket"
	SubjectAttachment   Subject = "attachment"
	SubjectSubscription Subject = "subscription"
	SubjectJob          Subject = "job"
	SubjectAll          Subject = "all"
)

var validActions = map[Action]bool{
	ActionCreate: true, ActionRead: true, ActionUpdate: true,
	ActionDelete: true, ActionManage: true,
}

var validSubjects = map[Subject]bool{
	SubjectUser: true, SubjectTicket: true, SubjectAttachment: true,
	SubjectSubscription: true, SubjectJob: true, SubjectAll: true,
}

// Capability is one (action, subject) pair.
type Capability struct {
	Action  Action
	Subject Subject
}

// ParseCapability parses a stored permission name. Unknown actions or
// subjects are rejected so a malformed seed row cannot widen access.
func ParseCapability(name string) (Capability, error) {
	action, subject, ok := strings.Cut(name, ":")
	if !ok {
		return Capability{}, fmt.Errorf("malformed permission name %q", name)
	}
	cap := Capability{Action: Action(action), Subject: Subject(subject)}
	if !validActions[cap.Action] || !validSubjects[cap.Subject] {
		return Capability{}, fmt.Errorf("unknown permission name %q", name)
	}
	return cap, nil
}

// Ability is the capability set resolved for one request.
type Ability struct {
	caps map[Capability]bool
}

// NewAbility builds an ability from capabilities.
func NewAbility(caps ...Capability) Ability {
	set := make(map[Capability]bool, len(caps))
	for _, c := range caps {
		set[c] = true
	}
	return Ability{caps: set}
}

// ManageAll returns the blanket ability granted to the admin role.
func ManageAll() Ability {
	return NewAbility(Capability{Action: ActionManage, Subject: SubjectAll})
}

// Can reports whether the ability allows action on subject. manage:all
// short-circuits everything, matching the admin special case.
func (a Ability) Can(action Action, subject Subject) bool {
	if a.caps[Capability{Action: ActionManage, Subject: SubjectAll}] {
		return true
	}
	if a.caps[Capability{Action: ActionManage, Subject: subject}] {
		return true
	}
	return a.caps[Capability{Action: action, Subject: subject}]
}
