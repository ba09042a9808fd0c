package pcode

// ExtFuncName returns the symbolic name of a CALLFUNC extension-function id
// for trace output, or "?" if unrecognized.
func ExtFuncName(id int32) string {
	if name, ok := extFuncNames[id]; ok {
		return name
	}
	return "?"
}

// extFuncNames maps a CALLFUNC extension-function id to its symbolic name,
// grounded on original_source/src/ext.c's name table.
var extFuncNames = map[int32]string{
	1: "GetLineUDMFInt",
	2: "GetLineUDMFFixed",
	3: "GetThingUDMFInt",
	4: "GetThingUDMFFixed",
	5: "GetSectorUDMFInt",
	6: "GetSectorUDMFFixed",
	7: "GetSideUDMFInt",
	8: "GetSideUDMFFixed",
	9: "GetActorVelX",
	10: "GetActorVelY",
	11: "GetActorVelZ",
	12: "SetActivator",
	13: "SetActivatorToTarget",
	14: "GetActorViewHeight",
	15: "GetChar",
	16: "GetAirSupply",
	17: "SetAirSupply",
	18: "SetSkyScrollSpeed",
	19: "GetArmorType",
	20: "SpawnSpotForced",
	21: "SpawnSpotFacingForced",
	22: "CheckActorProperty",
	23: "SetActorVelocity",
	24: "SetUserVariable",
	25: "GetUserVariable",
	26: "Radius_Quake2",
	27: "CheckActorClass",
	28: "SetUserArray",
	29: "GetUserArray",
	30: "SoundSequenceOnActor",
	31: "SoundSequenceOnSector",
	32: "SoundSequenceOnPolyobj",
	33: "GetPolyobjX",
	34: "GetPolyobjY",
	35: "CheckSight",
	36: "SpawnForced",
	37: "AnnouncerSound",
	38: "SetPointer",
	39: "ACS_NamedExecute",
	40: "ACS_NamedSuspend",
	41: "ACS_NamedTerminate",
	42: "ACS_NamedLockedExecute",
	43: "ACS_NamedLockedExecuteDoor",
	44: "ACS_NamedExecuteWithResult",
	45: "ACS_NamedExecuteAlways",
	46: "UniqueTID",
	47: "IsTIDUsed",
	48: "Sqrt",
	49: "FixedSqrt",
	50: "VectorLength",
	51: "SetHUDClipRect",
	52: "SetHUDWrapWidth",
	53: "SetCVar",
	54: "GetUserCVar",
	55: "SetUserCVar",
	56: "GetCVarString",
	57: "SetCVarString",
	58: "GetUserCVarString",
	59: "SetUserCVarString",
	60: "LineAttack",
	61: "PlaySound",
	62: "StopSound",
	63: "strcmp",
	64: "stricmp",
	65: "StrLeft",
	66: "StrRight",
	67: "StrMid",
	68: "GetActorClass",
	69: "GetWeapon",
	70: "SoundVolume",
	71: "PlayActorSound",
	72: "SpawnDecal",
	73: "CheckFont",
	74: "DropItem",
	75: "CheckFlag",
	76: "SetLineActivation",
	77: "GetLineActivation",
	78: "GetActorPowerupTics",
	79: "ChangeActorAngle",
	80: "ChangeActorPitch",
	81: "GetArmorInfo",
	82: "DropInventory",
	83: "PickActor",
	84: "IsPointerEqual",
	85: "CanRaiseActor",
	86: "SetActorTeleFog",
	87: "SwapActorTeleFog",
	88: "SetActorRoll",
	89: "ChangeActorRoll",
	90: "GetActorRoll",
	91: "QuakeEx",
	92: "Warp",
	93: "GetMaxInventory",
	94: "SetSectorDamage",
	95: "SetSectorTerrain",
	96: "SpawnParticle",
	97: "SetMusicVolume",
	98: "CheckProximity",
	99: "CheckActorState",
	100: "ResetMap",
	101: "PlayerIsSpectator",
	102: "ConsolePlayerNumber",
	103: "GetTeamProperty",
	104: "GetPlayerLivesLeft",
	105: "SetPlayerLivesLeft",
	106: "KickFromGame",
	107: "GetGamemodeState",
	108: "SetDBEntry",
	109: "GetDBEntry",
	110: "SetDBEntryString",
	111: "GetDBEntryString",
	112: "IncrementDBEntry",
	113: "PlayerIsLoggedIn",
	114: "GetPlayerAccountName",
	115: "SortDBEntries",
	116: "CountDBResults",
	117: "FreeDBResults",
	118: "GetDBResultKeyString",
	119: "GetDBResultValueString",
	120: "GetDBResultValue",
	121: "GetDBEntryRank",
	122: "RequestScriptPuke",
	123: "BeginDBTransaction",
	124: "EndDBTransaction",
	125: "GetDBEntries",
	200: "CheckClass",
	201: "DamageActor",
	202: "SetActorFlag",
	203: "SetTranslation",
	204: "GetActorFloorTexture",
	205: "GetActorFloorTerrain",
	206: "StrArg",
	207: "Floor",
	208: "Round",
	209: "Ceil",
	210: "ScriptCall",
	211: "StartSlideshow",
	300: "GetLineX",
	301: "GetLineY",
	400: "SetSectorGlow",
	401: "SetFogDensity",
	19620: "GetTeamScore",
	19621: "SetTeamScore",
}
