package browser

import (
	"math/rand"

	"github.com/playwright-community/playwright-go"
)

// hideWebdriver masks the automation flag checked by most bot detectors.
const hideWebdriver = `Object.defineProperty(navigator, 'webdriver', { get: () => undefined });`

// MouseJiggle simulates random mouse movements to prevent idle detection
func MouseJiggle(page playwright.Page) error {
	viewportSize := page.ViewportSize()
	if viewportSize == nil {
		return nil
	}
	for i := 0; i < 3; i++ {
		x := rand.Intn(viewportSize.Width)
		y := rand.Intn(viewportSize.Height)
		if err := page.Mouse().Move(float64(x), float64(y)); err != nil {
			return err
		}
	}
	return nil
}
