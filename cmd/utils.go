package cmd

import (
	"flag"
	"log"

	"github.com/joho/godotenv"

	"urbansense/internal/geo"
)

func LoadEnvFile() {
	var configPath string

	flag.StringVar(&configPath, "env", "", "path to load env from")
	flag.Parse()

	if configPath == "" {
		log.Printf("no env file specified, using os.Environ only")
		return
	}

	log.Printf("loading env from file %s", configPath)
	if err := godotenv.Load(configPath); err != nil {
		log.Fatalf("error loading .env file '%s': %v", configPath, err)
	}
}

// LoadProfile resolves the city profile: an explicit path wins, otherwise
// the built-in Hulhumalé profile.
func LoadProfile(path string) *geo.Profile {
	if path == "" {
		return geo.DefaultProfile()
	}
	profile, err := geo.LoadProfile(path)
	if err != nil {
		log.Fatalf("error loading city profile: %v", err)
	}
	return profile
}
