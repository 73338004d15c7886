package plugin

// MenuFlags describe how a menu node is presented.
type MenuFlags uint8

const (
	MenuEnabled MenuFlags = 1 << iota
	MenuChecked
	MenuSeparator
)

// ActionKind selects what a menu leaf does when chosen.
type ActionKind uint8

const (
	ActionNone ActionKind = iota
	// ActionResetParam resets the parameter at Action.Param to its default.
	ActionResetParam
	// ActionClearModule resets every parameter of (Module, Slot).
	ActionClearModule
	// ActionCopyModule copies (Module, Slot) onto (Module, Target).
	ActionCopyModule
	// ActionSwapModule swaps (Module, Slot) with (Module, Target).
	ActionSwapModule
	// ActionHost forwards HostTag to the host-supplied menu.
	ActionHost
)

// String returns the action name.
func (k ActionKind) String() string {
	switch k {
	case ActionResetParam:
		return "reset-param"
	case ActionClearModule:
		return "clear-module"
	case ActionCopyModule:
		return "copy-module"
	case ActionSwapModule:
		return "swap-module"
	case ActionHost:
		return "host"
	default:
		return "none"
	}
}

// Action identifies a menu command as plain data.
type Action struct {
	Kind    ActionKind
	Module  int // module topology index
	Slot    int
	Target  int // target slot for copy/swap
	Param   int // global parameter index
	HostTag int32
}

// MenuNode is an immutable menu tree. Inner nodes have children and no action.
type MenuNode struct {
	Flags    MenuFlags
	Name     string
	Action   Action
	Children []MenuNode
}

// Item creates an enabled leaf.
func Item(name string, action Action) MenuNode {
	return MenuNode{Flags: MenuEnabled, Name: name, Action: action}
}

// Submenu creates an enabled inner node.
func Submenu(name string, children ...MenuNode) MenuNode {
	return MenuNode{Flags: MenuEnabled, Name: name, Children: children}
}

// Separator creates a separator node.
func Separator() MenuNode {
	return MenuNode{Flags: MenuSeparator}
}

// Enabled reports whether the node can be chosen.
func (n MenuNode) Enabled() bool {
	return n.Flags&MenuEnabled != 0
}

// IsLeaf reports whether the node has no children.
func (n MenuNode) IsLeaf() bool {
	return len(n.Children) == 0
}

// Walk visits every node depth first with its name path. Returning false
// from fn stops the walk.
func (n MenuNode) Walk(fn func(path []string, node MenuNode) bool) {
	n.walk(nil, fn)
}

func (n MenuNode) walk(path []string, fn func([]string, MenuNode) bool) bool {
	path = append(path[:len(path):len(path)], n.Name)
	if !fn(path, n) {
		return false
	}
	for _, c := range n.Children {
		if !c.walk(path, fn) {
			return false
		}
	}
	return true
}

// Find returns the descendant reached by following names from n's children.
func (n MenuNode) Find(names ...string) (MenuNode, bool) {
	cur := n
	for _, name := range names {
		found := false
		for _, c := range cur.Children {
			if c.Name == name {
				cur, found = c, true
				break
			}
		}
		if !found {
			return MenuNode{}, false
		}
	}
	return cur, true
}

// Actions returns the actions of all enabled leaves in order.
func (n MenuNode) Actions() []Action {
	var out []Action
	n.Walk(func(_ []string, node MenuNode) bool {
		if node.IsLeaf() && node.Enabled() && node.Action.Kind != ActionNone {
			out = append(out, node.Action)
		}
		return true
	})
	return out
}
