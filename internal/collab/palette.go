package collab

// palette is the fixed set of display colors handed out on join. The
// hub cycles through it in join order, so a user's color is stable for
// the life of their connection.
var palette = []string{
	"#e6194b",
	"#3cb44b",
	"#4363d8",
	"#f58231",
	"#911eb4",
	"#46f0f0",
	"#f032e6",
	"#008080",
	"#9a6324",
	"#800000",
	"#808000",
	"#000075",
}
