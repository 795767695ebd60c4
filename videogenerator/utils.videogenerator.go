package videogenerator

import "path/filepath"

func getFileNameWithoutExtension(filePath string) string {
	fileName := filepath.Base(filePath)
	return fileName[:len(fileName)-len(filepath.Ext(fileName))]
}

// DefaultOutputPath puts <midi name>.<ext> next to the MIDI file.
func DefaultOutputPath(midiPath, ext string) string {
	return filepath.Join(filepath.Dir(midiPath), getFileNameWithoutExtension(midiPath)+ext)
}
