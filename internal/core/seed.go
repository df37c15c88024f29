package core

type sampleImage struct {
	title    string
	imageURL string
}

var sampleImages = []sampleImage{
	{title: "Beautiful Landscape", imageURL: "https://example.com/images/sample1.jpg"},
	{title: "City Night View", imageURL: "https://example.com/images/sample2.png"},
	{title: "Abstract Art", imageURL: "https://example.com/images/sample3.webp"},
	{title: "Animated Character", imageURL: "https://example.com/images/sample4.gif"},
	{title: "Vector Illustration", imageURL: "https://example.com/images/sample5.svg"},
}
