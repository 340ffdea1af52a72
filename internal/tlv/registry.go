package tlv

// WriteFunc writes one catalogued block using the given session params.
type WriteFunc func(b *Builder, p *Params) error

// Catalog lists every block id this client can emit, in ascending id
// order. It exists so composers (the SSO request builder, tests) can
// iterate the full set without naming each function.
var Catalog = []struct {
	ID    uint16
	Write WriteFunc
}{
	{0x1, WriteBlock0x1},
	{0x2, WriteBlock0x2},
	{0x8, WriteBlock0x8},
	{0x18, WriteBlock0x18},
	{0x100, WriteBlock0x100},
	{0x104, WriteBlock0x104},
	{0x106, WriteBlock0x106},
	{0x107, WriteBlock0x107},
	{0x108, WriteBlock0x108},
	{0x109, WriteBlock0x109},
	{0x10A, WriteBlock0x10A},
	{0x112, WriteBlock0x112},
	{0x116, WriteBlock0x116},
	{0x124, WriteBlock0x124},
	{0x127, WriteBlock0x127},
	{0x128, WriteBlock0x128},
	{0x141, WriteBlock0x141},
	{0x142, WriteBlock0x142},
	{0x143, WriteBlock0x143},
	{0x144, WriteBlock0x144},
	{0x145, WriteBlock0x145},
	{0x146, WriteBlock0x146},
	{0x147, WriteBlock0x147},
	{0x148, WriteBlock0x148},
	{0x153, WriteBlock0x153},
	{0x154, WriteBlock0x154},
	{0x166, WriteBlock0x166},
	{0x16A, WriteBlock0x16A},
	{0x16B, WriteBlock0x16B},
	{0x16E, WriteBlock0x16E},
	{0x172, WriteBlock0x172},
	{0x174, WriteBlock0x174},
	{0x177, WriteBlock0x177},
	{0x17A, WriteBlock0x17A},
	{0x17C, WriteBlock0x17C},
	{0x183, WriteBlock0x183},
	{0x184, WriteBlock0x184},
	{0x185, WriteBlock0x185},
	{0x187, WriteBlock0x187},
	{0x188, WriteBlock0x188},
}

// WriteAll emits every block in Catalog, in order, via b.
func WriteAll(b *Builder, p *Params) error {
	for _, entry := range Catalog {
		if err := entry.Write(b, p); err != nil {
			return err
		}
	}
	return nil
}

// WriteSubset emits only the requested block ids, in Catalog order,
// skipping ids not found in the catalog.
func WriteSubset(b *Builder, p *Params, ids map[uint16]bool) error {
	for _, entry := range Catalog {
		if !ids[entry.ID] {
			continue
		}
		if err := entry.Write(b, p); err != nil {
			return err
		}
	}
	return nil
}
