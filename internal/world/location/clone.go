package location

// Clone returns an independent copy of the template.
func (t Template) Clone() Template {
	cloned := t
	cloned.Name = t.Name.Clone()
	cloned.Description = t.Description.Clone()
	cloned.Properties = cloneValueMap(t.Properties)
	cloned.DefaultExits = cloneStringMap(t.DefaultExits)
	cloned.InitialState = cloneValueMap(t.InitialState)
	cloned.OnEnterTriggers = CloneTriggers(t.OnEnterTriggers)
	cloned.OnExitTriggers = CloneTriggers(t.OnExitTriggers)
	cloned.AvailableActions = cloneStrings(t.AvailableActions)
	cloned.ItemIDs = cloneStrings(t.ItemIDs)
	return cloned
}

// Clone returns an independent copy of the instance.
func (i Instance) Clone() Instance {
	cloned := i
	cloned.Name = i.Name.Clone()
	cloned.Description = i.Description.Clone()
	cloned.Exits = cloneStringMap(i.Exits)
	cloned.StateVariables = cloneValueMap(i.StateVariables)
	return cloned
}
