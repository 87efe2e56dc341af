package view

import "fmt"

// Carousel navigates an image list with wraparound.
type Carousel struct {
	images []string
	index  int
}

// CarouselState is the rendered carousel.
type CarouselState struct {
	Image   string `json:"image,omitempty"`
	Index   int    `json:"index"`
	Total   int    `json:"total"`
	Counter string `json:"counter"`
}

func NewCarousel(images []string) *Carousel {
	cp := make([]string, len(images))
	copy(cp, images)
	return &Carousel{images: cp}
}

// Next advances, wrapping from the last image to the first.
func (c *Carousel) Next() {
	if len(c.images) == 0 {
		return
	}
	c.index = (c.index + 1) % len(c.images)
}

// Prev steps back, wrapping from the first image to the last.
func (c *Carousel) Prev() {
	if len(c.images) == 0 {
		return
	}
	c.index = (c.index - 1 + len(c.images)) % len(c.images)
}

func (c *Carousel) Current() string {
	if len(c.images) == 0 {
		return ""
	}
	return c.images[c.index]
}

// Counter is the one-based "i / n" label.
func (c *Carousel) Counter() string {
	if len(c.images) == 0 {
		return "0 / 0"
	}
	return fmt.Sprintf("%d / %d", c.index+1, len(c.images))
}

func (c *Carousel) State() CarouselState {
	return CarouselState{
		Image:   c.Current(),
		Index:   c.index,
		Total:   len(c.images),
		Counter: c.Counter(),
	}
}
