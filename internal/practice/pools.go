package practice

// Fragment pools used as generation ingredients.
var (
	nouns = []string{
		"galaxy", "mountain", "river", "phoenix", "crystal", "shadow", "compass",
		"lantern", "harbor", "meadow", "thunder", "whisper", "coral", "summit",
		"voyage", "ember", "mosaic", "horizon", "aurora", "beacon",
	}
	adjectives = []string{
		"ancient", "bright", "calm", "daring", "elegant", "fierce", "gentle",
		"hidden", "luminous", "mystic", "quiet", "radiant", "swift", "vibrant",
		"wandering", "golden", "silver", "cosmic", "serene", "bold",
	}
	verbs = []string{
		"explore", "discover", "create", "illuminate", "navigate", "transform",
		"observe", "design", "craft", "build", "launch", "gather", "decode",
		"master", "unlock",
	}
	topics = []string{
		"astronomy", "botany", "cartography", "engineering", "folklore",
		"geology", "history", "linguistics", "music", "philosophy", "robotics",
		"typography", "zoology", "architecture", "chemistry",
	}
	personNames = []string{
		"Alice", "Bjorn", "Clara", "Dmitri", "Elena", "Felix", "Grace", "Hugo",
		"Iris", "Jules", "Kira", "Leo", "Mira", "Niko", "Olive",
	}
	urls = []string{
		"https://zombo.com",
		"https://www.zombo.com",
		"https://html5zombo.com",
		"https://zombo.com/welcome",
		"https://zombo.com/anything-is-possible",
	}
	linkTitles  = []string{"Click here", "Learn more", "Visit site", "Read this", "Go here"}
	inlineFuncs = []string{"print", "console.log", "echo", "puts", "fmt.Println"}
	snippets    = []codeSnippet{
		{Lang: "python", Code: `print("Hello, world!")`},
		{Lang: "javascript", Code: `console.log("Hello!");`},
		{Lang: "rust", Code: `println!("Hello!");`},
		{Lang: "python", Code: `x = [i**2 for i in range(10)]`},
		{Lang: "javascript", Code: `const sum = (a, b) => a + b;`},
		{Lang: "go", Code: `fmt.Println("Hello!")`},
	}
)

type codeSnippet struct {
	Lang string
	Code string
}
