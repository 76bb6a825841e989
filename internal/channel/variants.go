package channel

// Email delivers to a set of e-mail addresses. No external provisioning.
type Email struct {
	core
	Addresses []string `json:"emailAddresses,omitempty"`
}

func (e *Email) Type() ChannelType { return TypeEmail }
func (e *Email) RequiresSetup() bool { return false }
func (e *Email) Touchpoints() []string { return copyStrings(e.Addresses) }

func (e *Email) clone() *Email {
	return &Email{core: e.cloneCore(), Addresses: copyStrings(e.Addresses)}
}

func (e *Email) Clone() Channel { return e.clone() }

func (e *Email) Flatten() []Channel {
	out := make([]Channel, 0, len(e.Addresses))
	for _, a := range e.Addresses {
		cl := e.clone()
		cl.Addresses = []string{a}
		out = append(out, cl)
	}
	return out
}

func (e *Email) Diff(other Channel) (deletions, additions []Channel, err error) {
	o, ok := other.(*Email)
	if !ok {
		return nil, nil, mismatch(TypeEmail, other)
	}
	removed, added := diffStrings(e.Addresses, o.Addresses)
	for _, a := range removed {
		cl := e.clone()
		cl.Addresses = []string{a}
		deletions = append(deletions, cl)
	}
	for _, a := range added {
		cl := o.clone()
		cl.Addresses = []string{a}
		additions = append(additions, cl)
	}
	return deletions, additions, nil
}

func (e *Email) Merge(other Channel) error {
	o, ok := other.(*Email)
	if !ok {
		return mismatch(TypeEmail, other)
	}
	e.mergeCore(&o.core)
	e.Addresses = copyStrings(o.Addresses)
	return nil
}

// SMS delivers to a set of phone numbers. Each number needs a provider-side
// subscription before first use.
type SMS struct {
	core
	Phones []string `json:"phoneNumbers,omitempty"`
}

func (s *SMS) Type() ChannelType { return TypeSMS }
func (s *SMS) RequiresSetup() bool { return true }
func (s *SMS) Touchpoints() []string { return copyStrings(s.Phones) }

func (s *SMS) clone() *SMS {
	return &SMS{core: s.cloneCore(), Phones: copyStrings(s.Phones)}
}

func (s *SMS) Clone() Channel { return s.clone() }

func (s *SMS) Flatten() []Channel {
	out := make([]Channel, 0, len(s.Phones))
	for _, p := range s.Phones {
		cl := s.clone()
		cl.Phones = []string{p}
		out = append(out, cl)
	}
	return out
}

func (s *SMS) Diff(other Channel) (deletions, additions []Channel, err error) {
	o, ok := other.(*SMS)
	if !ok {
		return nil, nil, mismatch(TypeSMS, other)
	}
	removed, added := diffStrings(s.Phones, o.Phones)
	for _, p := range removed {
		cl := s.clone()
		cl.Phones = []string{p}
		deletions = append(deletions, cl)
	}
	for _, p := range added {
		cl := o.clone()
		cl.Phones = []string{p}
		additions = append(additions, cl)
	}
	return deletions, additions, nil
}

func (s *SMS) Merge(other Channel) error {
	o, ok := other.(*SMS)
	if !ok {
		return mismatch(TypeSMS, other)
	}
	s.mergeCore(&o.core)
	s.Phones = copyStrings(o.Phones)
	return nil
}

// Push delivers to mobile device tokens through a push service. Tokens need
// provider-side registration before first use.
type Push struct {
	core
	Tokens   []string `json:"deviceTokens,omitempty"`
	Service  string   `json:"serviceName,omitempty"`
	Platform string   `json:"appPlatform,omitempty"`
}

func (p *Push) Type() ChannelType { return TypePush }
func (p *Push) RequiresSetup() bool { return true }
func (p *Push) Touchpoints() []string { return copyStrings(p.Tokens) }

func (p *Push) clone() *Push {
	return &Push{
		core:     p.cloneCore(),
		Tokens:   copyStrings(p.Tokens),
		Service:  p.Service,
		Platform: p.Platform,
	}
}

func (p *Push) Clone() Channel { return p.clone() }

func (p *Push) Flatten() []Channel {
	out := make([]Channel, 0, len(p.Tokens))
	for _, t := range p.Tokens {
		cl := p.clone()
		cl.Tokens = []string{t}
		out = append(out, cl)
	}
	return out
}

func (p *Push) Diff(other Channel) (deletions, additions []Channel, err error) {
	o, ok := other.(*Push)
	if !ok {
		return nil, nil, mismatch(TypePush, other)
	}
	removed, added := diffStrings(p.Tokens, o.Tokens)
	for _, t := range removed {
		cl := p.clone()
		cl.Tokens = []string{t}
		deletions = append(deletions, cl)
	}
	for _, t := range added {
		cl := o.clone()
		cl.Tokens = []string{t}
		additions = append(additions, cl)
	}
	return deletions, additions, nil
}

func (p *Push) Merge(other Channel) error {
	o, ok := other.(*Push)
	if !ok {
		return mismatch(TypePush, other)
	}
	p.mergeCore(&o.core)
	p.Tokens = copyStrings(o.Tokens)
	p.Service = o.Service
	p.Platform = o.Platform
	return nil
}

// Portal delivers to portal topic identifiers. Topics are carried as data but
// the portal does not participate in flatten/diff provisioning.
type Portal struct {
	core
	Topics []string `json:"topics,omitempty"`
}

func (p *Portal) Type() ChannelType { return TypePortal }
func (p *Portal) RequiresSetup() bool { return false }
func (p *Portal) Touchpoints() []string { return copyStrings(p.Topics) }

func (p *Portal) clone() *Portal {
	return &Portal{core: p.cloneCore(), Topics: copyStrings(p.Topics)}
}

func (p *Portal) Clone() Channel { return p.clone() }

func (p *Portal) Flatten() []Channel { return []Channel{} }

func (p *Portal) Diff(other Channel) (deletions, additions []Channel, err error) {
	if _, ok := other.(*Portal); !ok {
		return nil, nil, mismatch(TypePortal, other)
	}
	return nil, nil, nil
}

func (p *Portal) Merge(other Channel) error {
	o, ok := other.(*Portal)
	if !ok {
		return mismatch(TypePortal, other)
	}
	p.mergeCore(&o.core)
	p.Topics = copyStrings(o.Topics)
	return nil
}

// APIPush delivers by a direct API call; there is no touchpoint to manage.
type APIPush struct {
	core
}

func (a *APIPush) Type() ChannelType { return TypeAPIPush }
func (a *APIPush) RequiresSetup() bool { return false }
func (a *APIPush) Touchpoints() []string { return []string{} }

func (a *APIPush) Clone() Channel { return &APIPush{core: a.cloneCore()} }

func (a *APIPush) Flatten() []Channel { return []Channel{} }

func (a *APIPush) Diff(other Channel) (deletions, additions []Channel, err error) {
	if _, ok := other.(*APIPush); !ok {
		return nil, nil, mismatch(TypeAPIPush, other)
	}
	return nil, nil, nil
}

func (a *APIPush) Merge(other Channel) error {
	o, ok := other.(*APIPush)
	if !ok {
		return mismatch(TypeAPIPush, other)
	}
	a.mergeCore(&o.core)
	return nil
}

// IVM delivers as an in-vehicle message; there is no touchpoint to manage.
type IVM struct {
	core
}

func (i *IVM) Type() ChannelType { return TypeIVM }
func (i *IVM) RequiresSetup() bool { return false }
func (i *IVM) Touchpoints() []string { return []string{} }

func (i *IVM) Clone() Channel { return &IVM{core: i.cloneCore()} }

func (i *IVM) Flatten() []Channel { return []Channel{} }

func (i *IVM) Diff(other Channel) (deletions, additions []Channel, err error) {
	if _, ok := other.(*IVM); !ok {
		return nil, nil, mismatch(TypeIVM, other)
	}
	return nil, nil, nil
}

func (i *IVM) Merge(other Channel) error {
	o, ok := other.(*IVM)
	if !ok {
		return mismatch(TypeIVM, other)
	}
	i.mergeCore(&o.core)
	return nil
}
