// Package symtab provides an offline reflection table for bind.
//
// Resolving class handles and field offsets through the target's own
// reflection data is slow and fragile. When the values are known ahead of
// time, for example from a previous dump, a Table answers the same lookups
// from a HuJSON file without reading target memory.
//
//	table, err := symtab.LoadFile("game.hujson")
//	if err != nil {
//	    return err
//	}
//	g := bind.Game{Reader: proc, Image: table}
//	v, ok := timerBinding.Read(g)
package symtab
