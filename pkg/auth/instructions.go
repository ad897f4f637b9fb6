package auth

import (
	"fmt"
	"io"
	"strings"
)

// ShowAPIKeyGuide writes step-by-step instructions for obtaining a Flickr API key
func ShowAPIKeyGuide(w io.Writer) {
	rule := strings.Repeat("=", 72)
	lines := []string{
		rule,
		"FLICKR API KEY GUIDE",
		rule,
		"",
		"The crawler calls flickr.photos.search, which needs an API key.",
		"",
		"STEP 1: Sign in",
		"   - Go to https://www.flickr.com and log in (a free account is enough)",
		"",
		"STEP 2: Create an app",
		"   - Open https://www.flickr.com/services/apps/create/",
		"   - Choose 'Apply for a Non-Commercial Key' unless you need commercial use",
		"   - Describe the app briefly and accept the terms",
		"",
		"STEP 3: Copy the key",
		"   - Flickr shows a Key and a Secret, both 32 hexadecimal characters",
		"   - Only the Key is required for public searches",
		"",
		"STEP 4: Save it",
		"   - Run 'flickrcrawler auth set' and paste the key when prompted",
		"   - Or export FLICKRCRAWLER_API_KEY=<key> for one-off runs",
		"",
		"NOTES:",
		"   - Keys are stored in the system keychain, or an encrypted file",
		"     when no keychain is available",
		"   - Flickr allows 3600 API calls per hour per key",
		"",
		rule,
	}
	for _, line := range lines {
		fmt.Fprintln(w, line)
	}
}

// ShowQuickGuide writes a one-line reminder for experienced users
func ShowQuickGuide(w io.Writer) {
	fmt.Fprintln(w, "Get a key at https://www.flickr.com/services/apps/create/ then run 'flickrcrawler auth set'")
}
