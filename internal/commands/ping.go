package commands

const aboutText = "**🤖 ARIA**: Adaptive, Responsive, Intelligent Assistant\n" +
	"Built for coaching, coordination, and interaction across Discord.\n" +
	"Core: Interaction & Awareness layer online."

func (d *Dispatcher) ping(req *Request) (*Reply, error) {
	return text("🏓 Pong! I'm awake."), nil
}

func (d *Dispatcher) about(req *Request) (*Reply, error) {
	return text(aboutText), nil
}

func (d *Dispatcher) help(req *Request) (*Reply, error) {
	return text("%s", helpText(d.ordered, d.gate.IsOwner(req.UserID))), nil
}
