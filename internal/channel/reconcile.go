package channel

import "fmt"

// Reconciliation is the set of provisioning actions needed to move a user
// from one channel configuration to another. Both lists are flattened to
// single-touchpoint granularity; entries whose RequiresSetup() is true are
// the ones the engine must push to provider provisioning APIs.
type Reconciliation struct {
	Deletions []Channel
	Additions []Channel
}

// Reconcile diffs a user's previous channel configuration against a newly
// submitted one. Each side holds at most one channel per type; a type absent
// on one side is treated as a channel with no touchpoints. Pure function,
// no side effects.
func Reconcile(oldChannels, newChannels []Channel) (Reconciliation, error) {
	oldByType, err := indexByType(oldChannels)
	if err != nil {
		return Reconciliation{}, err
	}
	newByType, err := indexByType(newChannels)
	if err != nil {
		return Reconciliation{}, err
	}

	res := Reconciliation{Deletions: []Channel{}, Additions: []Channel{}}
	for _, t := range ValidTypes() {
		oldCh, haveOld := oldByType[t]
		newCh, haveNew := newByType[t]
		if !haveOld && !haveNew {
			continue
		}
		if !haveOld {
			oldCh, _ = New(t)
		}
		if !haveNew {
			newCh, _ = New(t)
		}
		del, add, err := oldCh.Diff(newCh)
		if err != nil {
			return Reconciliation{}, err
		}
		res.Deletions = append(res.Deletions, del...)
		res.Additions = append(res.Additions, add...)
	}
	return res, nil
}

func indexByType(chs []Channel) (map[ChannelType]Channel, error) {
	m := make(map[ChannelType]Channel, len(chs))
	for _, ch := range chs {
		if ch == nil {
			return nil, fmt.Errorf("nil channel in configuration")
		}
		if _, dup := m[ch.Type()]; dup {
			return nil, fmt.Errorf("duplicate channel type %q", ch.Type())
		}
		m[ch.Type()] = ch
	}
	return m, nil
}
