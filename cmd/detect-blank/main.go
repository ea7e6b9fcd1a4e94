// Command detect-blank analyzes an album page image and exits with a code
// indicating whether the probed region is blank.
//
// Usage: detect-blank <filepath> <region> [dark] [light]
// - region: full, left, or right (halves matter for spread pages)
// - dark:   0..255 upper bound for an all-dark blank page (default 25)
// - light:  0..255 lower bound for an all-light blank page (default 230)
//
// Exit codes:
//
//	0 = blank region
//	1 = region has content
//	2 = error (bad args, cannot open/parse image, etc.)
package main

import (
	"errors"
	"fmt"
	"image"
	_ "image/jpeg" // Import the JPEG decoder.
	_ "image/png"  // Import the PNG decoder.
	"os"
	"strconv"

	_ "golang.org/x/image/tiff" // Import the TIFF decoder.

	"github.com/book-expert/album-ingest-service/internal/blank"
)

var (
	ErrInvalidArguments = errors.New("invalid number of arguments")
	ErrInvalidRegion    = errors.New("region must be full, left, or right")
	ErrInvalidThreshold = errors.New("threshold must be between 0 and 255")
)

// arguments holds the parsed and validated command-line arguments.
type arguments struct {
	filePath   string
	region     blank.Region
	thresholds blank.Thresholds
}

// Exit codes used by this tool to communicate with callers.
const (
	exitCodeBlank    = 0 // The region is blank.
	exitCodeNotBlank = 1 // The region has content.
	exitCodeError    = 2 // An error occurred (e.g., bad arguments, file not found).

	// Command line argument constants.
	minArgCount   = 3
	maxArgCount   = 5
	maxColorValue = 255
)

func main() {
	// Step 1: Parse and validate the command-line arguments.
	args, err := parseAndValidateArguments(os.Args)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Argument error: %v\n", err)
		os.Exit(exitCodeError)
	}

	// Step 2: Analyze the image file.
	isBlank, err := regionIsBlank(args)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Image analysis error: %v\n", err)
		os.Exit(exitCodeError)
	}

	// Step 3: Exit with the appropriate code based on the analysis.
	if isBlank {
		os.Exit(exitCodeBlank)
	}

	os.Exit(exitCodeNotBlank)
}

// parseAndValidateArguments processes the raw command-line arguments.
func parseAndValidateArguments(args []string) (arguments, error) {
	if len(args) < minArgCount || len(args) > maxArgCount {
		return arguments{}, fmt.Errorf(
			"expected 2 to 4 arguments, but got %d. Usage: <program> <filepath> <region> [dark] [light]: %w",
			len(args)-1,
			ErrInvalidArguments,
		)
	}

	region, err := parseRegion(args[2])
	if err != nil {
		return arguments{}, err
	}

	thresholds := blank.Thresholds{
		Dark:       0,
		Light:      0,
		SampleSize: 0,
	}

	if len(args) > 3 {
		thresholds.Dark, err = parseThreshold(args[3])
		if err != nil {
			return arguments{}, err
		}
	}

	if len(args) > 4 {
		thresholds.Light, err = parseThreshold(args[4])
		if err != nil {
			return arguments{}, err
		}
	}

	return arguments{
		filePath:   args[1],
		region:     region,
		thresholds: thresholds,
	}, nil
}

// parseRegion validates the region argument.
func parseRegion(regionStr string) (blank.Region, error) {
	region := blank.Region(regionStr)

	switch region {
	case blank.RegionFull, blank.RegionLeft, blank.RegionRight:
		return region, nil
	default:
		return "", fmt.Errorf("invalid region '%s': %w", regionStr, ErrInvalidRegion)
	}
}

// parseThreshold parses and validates an 8-bit channel threshold.
func parseThreshold(thresholdStr string) (uint8, error) {
	value, err := strconv.Atoi(thresholdStr)
	if err != nil {
		return 0, fmt.Errorf("invalid threshold '%s': %w", thresholdStr, err)
	}

	if value < 0 || value > maxColorValue {
		return 0, fmt.Errorf(
			"threshold must be between 0 and 255, got %d: %w",
			value,
			ErrInvalidThreshold,
		)
	}

	return uint8(value), nil
}

// regionIsBlank loads the image and probes the requested region.
func regionIsBlank(args arguments) (bool, error) {
	img, err := loadImage(args.filePath)
	if err != nil {
		return false, err
	}

	return blank.IsBlank(img, args.region, args.thresholds), nil
}

// loadImage opens and decodes an image file.
func loadImage(filePath string) (image.Image, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("could not open file %s: %w", filePath, err)
	}

	defer func() {
		cerr := file.Close()
		if cerr != nil {
			_, _ = fmt.Fprintf(
				os.Stderr,
				"failed to close file %s: %v\n",
				filePath,
				cerr,
			)
		}
	}()

	img, _, err := image.Decode(file)
	if err != nil {
		return nil, fmt.Errorf(
			"could not decode image file %s: %w",
			filePath,
			err,
		)
	}

	return img, nil
}
