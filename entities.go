package filter

// entityTable lists BIDS entity codes in the order the BIDS specification defines.
var entityTable = [][2]string{
	{"sub", "Subject"},
	{"ses", "Session"},
	{"sample", "Sample"},
	{"task", "Task"},
	{"tracksys", "Tracking System"},
	{"acq", "Acquisition"},
	{"nuc", "Nucleus"},
	{"voi", "Volume of Interest"},
	{"ce", "Contrast Enhancing Agent"},
	{"trc", "Tracer"},
	{"stain", "Stain"},
	{"rec", "Reconstruction"},
	{"dir", "Phase-Encoding Direction"},
	{"run", "Run"},
	{"mod", "Corresponding Modality"},
	{"echo", "Echo"},
	{"flip", "Flip Angle"},
	{"inv", "Inversion Time"},
	{"mt", "Magnetization Transfer"},
	{"part", "Part"},
	{"proc", "Processed (on device)"},
	{"hemi", "Hemisphere"},
	{"space", "Space"},
	{"split", "Split"},
	{"recording", "Recording"},
	{"chunk", "Chunk"},
	{"seg", "Segmentation"},
	{"res", "Resolution"},
	{"den", "Density"},
	{"label", "Label"},
	{"desc", "Description"},
}

var entityNames = func() map[string]string {
	m := make(map[string]string, len(entityTable))
	for _, e := range entityTable {
		m[e[0]] = e[1]
	}
	return m
}()

// EntityName returns the full name of a BIDS entity code, or the code itself if
// it's not a known entity.
func EntityName(code string) string {
	if name, ok := entityNames[code]; ok {
		return name
	}
	return code
}

// EntityCodes returns every known BIDS entity code.
func EntityCodes() []string {
	out := make([]string, len(entityTable))
	for i, e := range entityTable {
		out[i] = e[0]
	}
	return out
}
