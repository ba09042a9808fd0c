package pcode

// callFuncNames is a representative slice of the extension function table
// CALLFUNC indexes into (§4.5 "a built-in table covering 1–99, 100–125,
// 200–211, 300–301, 400–401, 19620–19621, etc."). CallFuncName returns
// "?" for unlisted ids. CALLFUNC's trace names functions through the full
// ExtFuncName table, not this one; CALLFUNC never executes any of them.
var callFuncNames = map[int32]string{
	1: "GetLineUDMFInt", 2: "GetLineUDMFFixed", 3: "GetThingUDMFInt",
	4: "GetThingUDMFFixed", 5: "GetSectorUDMFInt", 6: "GetSectorUDMFFixed",
	7: "GetSideUDMFInt", 8: "GetSideUDMFFixed", 9: "GetActorVelX",
	10: "GetActorVelY", 11: "GetActorVelZ", 12: "SetActivator",
	13: "SetActivatorToTarget", 14: "GetActorViewHeight", 15: "GetChar",
	16: "GetAirSupply", 17: "SetAirSupply", 18: "SetSkyScrollSpeed",
	19: "GetArmorType", 20: "SpawnSpotForced", 21: "SpawnSpotFacingForced",
	22: "CheckActorProperty", 23: "SetActorVelocity", 24: "SetUserVariable",
	25: "GetUserVariable", 27: "CheckActorClass", 28: "SetUserArray",
	29: "GetUserArray", 30: "SoundSequenceOnActor", 31: "SoundSequenceOnSector",
	32: "SoundSequenceOnPolyobj", 33: "GetPolyobjX", 34: "GetPolyobjY",
	35: "CheckSight", 36: "SpawnForced", 37: "AnnouncerSound",
	38: "SetPointer", 39: "ACS_NamedExecute", 40: "ACS_NamedSuspend",
	41: "ACS_NamedTerminate", 42: "ACS_NamedLockedExecute",
	43: "ACS_NamedLockedExecuteDoor", 44: "ACS_NamedExecuteWithResult",
	45: "ACS_NamedExecuteAlways", 46: "UniqueTID", 47: "IsTIDUsed",
	48: "Sqrt", 49: "FixedSqrt", 50: "VectorLength",

	100: "ResetMap", 101: "PlayerIsSpectator", 102: "ConsolePlayerNumber",
	103: "GetTeamProperty", 104: "GetPlayerLivesLeft", 105: "SetPlayerLivesLeft",
	106: "KickFromGame", 107: "GetGamemodeState", 108: "SetDBEntry",
	109: "GetDBEntry", 110: "SetDBEntryString", 111: "GetDBEntryString",
	112: "IncrementDBEntry", 113: "PlayerIsLoggedIn", 114: "GetPlayerAccountName",
	115: "SortDBEntries", 116: "CountDBResults", 117: "FreeDBResults",
	118: "GetDBResultKeyString", 119: "GetDBResultValueString",
	120: "GetDBResultValue", 121: "GetDBEntryRank", 122: "RequestScriptPuke",
	123: "BeginDBTransaction", 124: "EndDBTransaction", 125: "GetDBEntries",

	200: "CheckClass", 201: "DamageActor", 202: "SetActorFlag",
	203: "SetTranslation", 204: "GetActorFloorTexture",
	205: "GetActorFloorTerrain", 206: "StrArg", 207: "Floor", 208: "Round",
	209: "Ceil", 210: "ScriptCall", 211: "StartSlideshow",

	300: "GetLineX", 301: "GetLineY",

	400: "SetSectorGlow", 401: "SetFogDensity",

	19620: "GetTeamScore", 19621: "SetTeamScore",
}

// CallFuncName returns the extension function's symbolic name, or "?" if id
// falls outside the subset this VM recognizes.
func CallFuncName(id int32) string {
	if name, ok := callFuncNames[id]; ok {
		return name
	}
	return "?"
}

// DumpScriptFuncID and DumpLocalVarsFuncID are the two CALLFUNC ids the
// interpreter actually acts on (§4.5 "id 20000 (DumpScript) ... id 20001
// (DumpLocalVars)"); every other id is trace-only.
const (
	DumpScriptFuncID    = 20000
	DumpLocalVarsFuncID = 20001
)
