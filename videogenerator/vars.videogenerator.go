package videogenerator

// Canvas proportions.
const (
	sideMargin    = 0.05   // of screen width
	bottomMargin  = 0.2    // of screen height
	noteWidth     = 0.3    // of column width
	lineThickness = 0.05   // of column width
	minNoteHeight = 0.0208 // of screen height
)

const (
	lineOpacity             = 180.0 / 255
	hitEffectTime           = 1.0 // sec
	fadeTime                = 1.0 // sec, video fade in and out
	fallingNoteBorderRadius = 6.0
	previewOffset           = 10.0 // sec after the lead-in
)

var noteNames = [12]string{"C", "C#", "D", "D#", "E", "F", "F#", "G", "G#", "A", "A#", "B"}

// Boomwhacker colours, C first.
var boomwhackerColors = [12]string{
	"ff0000", "fa6c20", "ff9300", "ffc000",
	"fffe00", "83ff00", "00ff74", "00ffe5",
	"002bff", "8000ff", "ae5eff", "ff00ff",
}

var white = Color{1, 1, 1}
var black = Color{0, 0, 0}

var resolution1080p = ScreenResolution{1920, 1080}
var resolution720p = ScreenResolution{1280, 720}
var resolution480p = ScreenResolution{854, 480}
var resolution360p = ScreenResolution{640, 360}

var namedResolutions = map[string]ScreenResolution{
	"1080p": resolution1080p,
	"720p":  resolution720p,
	"480p":  resolution480p,
	"360p":  resolution360p,
}

var defaultResolution = resolution720p
