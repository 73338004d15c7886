package host

import (
	"fmt"

	"github.com/justyntemme/plugcore/pkg/framework/plugin"
)

// ModuleMenu builds the context menu of module instance (module, slot), or
// an empty node when the host format does not show module menus.
func (c *Controller) ModuleMenu(module, slot int) plugin.MenuNode {
	md, ok := c.desc.Module(module, slot)
	if !ok || !c.format.ModuleMenus {
		return plugin.MenuNode{}
	}
	root := plugin.Submenu(md.Name,
		plugin.Item("Clear", plugin.Action{Kind: plugin.ActionClearModule, Module: module, Slot: slot}),
	)
	slots := c.desc.Slots(module)
	if slots < 2 {
		return root
	}
	copyTo := plugin.Submenu("Copy To")
	swapWith := plugin.Submenu("Swap With")
	for target := 0; target < slots; target++ {
		if target == slot {
			continue
		}
		other, _ := c.desc.Module(module, target)
		copyTo.Children = append(copyTo.Children, plugin.Item(other.Name,
			plugin.Action{Kind: plugin.ActionCopyModule, Module: module, Slot: slot, Target: target}))
		swapWith.Children = append(swapWith.Children, plugin.Item(other.Name,
			plugin.Action{Kind: plugin.ActionSwapModule, Module: module, Slot: slot, Target: target}))
	}
	root.Children = append(root.Children, plugin.Separator(), copyTo, swapWith)
	return root
}

// ParamMenu builds the context menu of a parameter. Host supplied entries
// are appended when the format merges host menus; their actions must be of
// kind ActionHost.
func (c *Controller) ParamMenu(index int, hostItems ...plugin.MenuNode) (plugin.MenuNode, error) {
	if err := c.check(index); err != nil {
		return plugin.MenuNode{}, err
	}
	info := c.params[index]
	reset := plugin.Item("Reset To Default", plugin.Action{Kind: plugin.ActionResetParam, Param: index})
	if info.Output {
		reset.Flags &^= plugin.MenuEnabled
	}
	root := plugin.Submenu(info.Title, reset)
	if c.format.HostParamMenus && len(hostItems) > 0 {
		root.Children = append(root.Children, plugin.Separator())
		root.Children = append(root.Children, hostItems...)
	}
	return root, nil
}

// Perform applies a menu action and notifies subscribers of every value it
// changed.
func (c *Controller) Perform(a plugin.Action) error {
	switch a.Kind {
	case plugin.ActionNone:
		return nil
	case plugin.ActionHost:
		return fmt.Errorf("%w: tag %d", ErrHostAction, a.HostTag)
	case plugin.ActionResetParam:
		if err := c.check(a.Param); err != nil {
			return err
		}
		c.bus.Publish(a.Param, c.current().ResetParam(a.Param))
		return nil
	}

	src, ok := c.desc.ModuleIndex(a.Module, a.Slot)
	if !ok {
		return fmt.Errorf("host: %s: no module %d slot %d", a.Kind, a.Module, a.Slot)
	}
	var touched []int
	switch a.Kind {
	case plugin.ActionClearModule:
		touched = c.current().ResetModule(src)
	case plugin.ActionCopyModule, plugin.ActionSwapModule:
		dst, ok := c.desc.ModuleIndex(a.Module, a.Target)
		if !ok || dst == src {
			return fmt.Errorf("host: %s: bad target slot %d", a.Kind, a.Target)
		}
		if a.Kind == plugin.ActionCopyModule {
			touched = c.current().CopyModule(src, dst)
		} else {
			touched = c.current().SwapModules(src, dst)
		}
	default:
		return fmt.Errorf("host: unknown action %d", a.Kind)
	}
	c.log.Debug("%s on %s", a.Kind, c.desc.Modules[src].ID)
	c.bus.Commit(c.current(), touched...)
	return nil
}
