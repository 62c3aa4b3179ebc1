package clrmem

// Header offsets of the managed object model. They are fixed for one
// runtime version and are never negotiated or checked.
//
//	Structure  Field             Offset
//	───────────────────────────────────
//	Array      length (u32)      0x18
//	Array      data              0x20
//	String     length (u32)      0x10
//	String     data (UTF-16)     0x14
//	List       items (Array*)    0x10
//	List       size (u32)        0x18
//	Map/Set    entries (Array*)  0x18
//	Map/Set    count (u32)       0x20
//	Entry      hash (u32)        0x00
//	Entry      next (u32)        0x04
const (
	ArraySizeOffset = 0x18
	ArrayDataOffset = 0x20

	StringSizeOffset = 0x10
	StringDataOffset = 0x14

	ListItemsOffset = 0x10
	ListSizeOffset  = 0x18

	MapEntriesOffset = 0x18
	MapSizeOffset    = 0x20
)
