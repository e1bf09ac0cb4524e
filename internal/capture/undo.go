package capture

import "posecap/internal/logx"

// undoStack collects restore closures while a capture mutates the scene and
// runs them in reverse order, so later setup is undone first.
type undoStack struct {
	fns []func()
}

func (u *undoStack) push(fn func()) {
	if fn != nil {
		u.fns = append(u.fns, fn)
	}
}

// unwind runs every restore closure once, newest first, and empties the stack.
// A panicking closure does not stop the older ones from running.
func (u *undoStack) unwind() {
	for len(u.fns) > 0 {
		fn := u.fns[len(u.fns)-1]
		u.fns = u.fns[:len(u.fns)-1]
		func() {
			defer func() {
				if r := recover(); r != nil {
					logx.Logger().Error("capture: restore step panicked", "panic", r)
				}
			}()
			fn()
		}()
	}
}

func (u *undoStack) len() int { return len(u.fns) }
