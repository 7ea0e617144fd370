package output

// listener owns a Subscription and cancels it at most once.
type listener struct {
	sub Subscription
}

func listen(sub Subscription) *listener {
	return &listener{sub: sub}
}

// Release cancels the subscription if it is still active. It reports
// whether this call did the cancelling.
func (l *listener) Release() bool {
	if (l == nil) || (l.sub == nil) {
		return false
	}

	sub := l.sub
	l.sub = nil
	sub.Cancel()
	return true
}

// Active reports whether the subscription has not been released.
func (l *listener) Active() bool {
	return (l != nil) && (l.sub != nil)
}
