// Package permission decides, per resource kind and action, whether a
// principal may act on a specific resource instance. It is a pure rule
// table: no persistence calls, no side effects. Callers pass a snapshot
// of the resource's ownership fields and get back an allow/deny decision
// with a machine-readable reason.
package permission

import "github.com/google/uuid"

// Role is the closed set of account roles on the platform.
type Role string

const (
	RoleCustomer Role = "customer"
	RoleBusiness Role = "business"
	RoleStaff    Role = "staff"
)

// Principal is the authenticated (or anonymous) actor making a request.
type Principal struct {
	ID            uuid.UUID
	Role          Role
	Authenticated bool
}

// Anonymous returns the unauthenticated principal.
func Anonymous() Principal {
	return Principal{}
}

// Action is an operation a principal attempts on a resource.
type Action string

const (
	ActionCreate Action = "create"
	ActionRead   Action = "read"
	ActionUpdate Action = "update"
	ActionDelete Action = "delete"
)

// Kind identifies the resource kind being acted on.
type Kind string

const (
	KindProfile     Kind = "profile"
	KindOffer       Kind = "offer"
	KindOfferDetail Kind = "offer_detail"
	KindOrder       Kind = "order"
	KindReview      Kind = "review"
)

// Resource is an ownership snapshot of the target resource. Only the
// fields relevant to the Kind need to be set; create actions have no
// instance and pass the zero value for all ID fields.
type Resource struct {
	Kind           Kind
	OwnerID        uuid.UUID // Profile owner or Offer creator
	CustomerID     uuid.UUID // Order
	BusinessUserID uuid.UUID // Order
	ReviewerID     uuid.UUID // Review author
}

// Reason is a machine-readable denial reason.
type Reason string

const (
	ReasonUnauthenticated Reason = "unauthenticated"
	ReasonWrongRole       Reason = "wrong_role"
	ReasonNotOwner        Reason = "not_owner"
	ReasonForbidden       Reason = "not_found_or_forbidden"
)

// Decision is the outcome of an authorization check.
type Decision struct {
	Allowed bool
	Reason  Reason
}

func allow() Decision {
	return Decision{Allowed: true}
}

func deny(reason Reason) Decision {
	return Decision{Allowed: false, Reason: reason}
}

type rule func(p Principal, res Resource) Decision

// open allows any principal, authenticated or not.
func open(Principal, Resource) Decision {
	return allow()
}

// authenticated allows any signed-in principal.
func authenticated(p Principal, _ Resource) Decision {
	if !p.Authenticated {
		return deny(ReasonUnauthenticated)
	}
	return allow()
}

// hasRole allows only authenticated principals with the given role.
func hasRole(role Role) rule {
	return func(p Principal, _ Resource) Decision {
		if !p.Authenticated {
			return deny(ReasonUnauthenticated)
		}
		if p.Role != role {
			return deny(ReasonWrongRole)
		}
		return allow()
	}
}

// owns allows only the principal whose ID matches the extracted owner field.
func owns(ownerOf func(Resource) uuid.UUID) rule {
	return func(p Principal, res Resource) Decision {
		if !p.Authenticated {
			return deny(ReasonUnauthenticated)
		}
		if p.ID != ownerOf(res) {
			return deny(ReasonNotOwner)
		}
		return allow()
	}
}

// party allows either side of an order: its customer or its business user.
func party(p Principal, res Resource) Decision {
	if !p.Authenticated {
		return deny(ReasonUnauthenticated)
	}
	if p.ID != res.CustomerID && p.ID != res.BusinessUserID {
		return deny(ReasonForbidden)
	}
	return allow()
}

var rules = map[Kind]map[Action]rule{
	KindProfile: {
		ActionRead:   authenticated,
		ActionUpdate: owns(func(r Resource) uuid.UUID { return r.OwnerID }),
	},
	KindOffer: {
		ActionCreate: hasRole(RoleBusiness),
		ActionRead:   open,
		ActionUpdate: owns(func(r Resource) uuid.UUID { return r.OwnerID }),
		ActionDelete: owns(func(r Resource) uuid.UUID { return r.OwnerID }),
	},
	KindOfferDetail: {
		ActionRead: authenticated,
	},
	KindOrder: {
		ActionCreate: hasRole(RoleCustomer),
		ActionRead:   party,
		ActionUpdate: owns(func(r Resource) uuid.UUID { return r.BusinessUserID }),
		ActionDelete: hasRole(RoleStaff),
	},
	KindReview: {
		ActionCreate: hasRole(RoleCustomer),
		ActionRead:   authenticated,
		ActionUpdate: owns(func(r Resource) uuid.UUID { return r.ReviewerID }),
		ActionDelete: owns(func(r Resource) uuid.UUID { return r.ReviewerID }),
	},
}

// Authorize evaluates the rule table for the given principal, action and
// resource snapshot. Unknown kind/action combinations are denied.
func Authorize(p Principal, action Action, res Resource) Decision {
	actions, ok := rules[res.Kind]
	if !ok {
		return deny(ReasonForbidden)
	}
	r, ok := actions[action]
	if !ok {
		return deny(ReasonForbidden)
	}
	return r(p, res)
}
