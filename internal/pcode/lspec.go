package pcode

// ACSExecute is the only line special the interpreter acts on (§4.5 "Only
// ACS_Execute (id 80) is executed").
const ACSExecute = 80

// lspecNames is a representative slice of the line-special symbol table
// (§4.5 "traced (id, symbolic name or ?, literal args)"). LspecName
// returns "?" for unlisted ids. Line-special traces name specials through
// the full LineSpecialName table, not this one; none of these, ACS_Execute
// included in its traced form, ever runs a game effect.
var lspecNames = map[int32]string{
	1: "Polyobj_StartLine", 2: "Polyobj_RotateLeft", 3: "Polyobj_RotateRight",
	4: "Polyobj_Move", 5: "Polyobj_ExplicitLine", 7: "Polyobj_DoorSwing",
	8: "Polyobj_DoorSlide", 9: "Line_Horizon", 10: "Door_Close",
	11: "Door_Open", 12: "Door_Raise", 13: "Door_LockedRaise",
	14: "Door_Animated", 15: "Autosave", 16: "Transfer_WallLight",
	17: "Thing_Raise", 18: "StartConversation", 19: "Thing_Stop",
	20: "Floor_LowerByValue", 21: "Floor_LowerToLowest",
	22: "Floor_LowerToNearest", 23: "Floor_RaiseByValue",
	24: "Floor_RaiseToHighest", 25: "Floor_RaiseToNearest",
	26: "Stairs_BuildDown", 27: "Stairs_BuildUp", 28: "Floor_RaiseAndCrush",
	29: "Pillar_Build", 30: "Pillar_Open", 31: "Stairs_BuildDownSync",
	32: "Stairs_BuildUpSync", 33: "ForceField", 34: "ClearForceField",
	37: "Floor_MoveToValue", 38: "Ceiling_Waggle",
	39: "Teleport_ZombieChanger", 40: "Ceiling_LowerByValue",
	41: "Ceiling_RaiseByValue", 42: "Ceiling_CrushAndRaise",
	43: "Ceiling_LowerAndCrush", 44: "Ceiling_CrushStop",
	45: "Ceiling_CrushRaiseAndStay", 46: "Floor_CrushStop",
	47: "Ceiling_MoveToValue", 49: "GlassBreak",
	80: "Acs_Execute", 81: "Acs_Suspend", 82: "Acs_Terminate",
	83: "Acs_LockedExecute", 84: "Acs_ExecuteWithResult",
	85: "Acs_LockedExecuteDoor",
	100: "Scroll_Texture_Left", 101: "Scroll_Texture_Right",
	102: "Scroll_Texture_Up", 103: "Scroll_Texture_Down",
	104: "Ceiling_CrushAndRaiseSilentDist", 105: "Door_WaitRaise",
	106: "Door_WaitClose", 107: "Line_SetPortalTarget",
	109: "Light_ForceLightning", 110: "Light_RaiseByValue",
	111: "Light_LowerByValue", 112: "Light_ChangeToValue",
	113: "Light_Fade", 114: "Light_Glow",
}

// LspecName returns id's symbolic name, or "?" if it falls outside the
// subset this VM recognizes.
func LspecName(id int32) string {
	if name, ok := lspecNames[id]; ok {
		return name
	}
	return "?"
}
