package templates

// LegalUpdated is the revision date shown on the legal pages.
const LegalUpdated = "January 1, 2025"

// AboutPage is the copy for /about.
var AboutPage = InfoPageData{
	Title: "About NeuralPost",
	Lead:  "NeuralPost is an AI-powered news publication covering artificial intelligence, technology, business and science.",
	Sections: []InfoSection{
		{
			Heading: "Our Mission",
			Paragraphs: []string{
				"We make fast-moving technology news easier to follow. Every day our pipeline reads the top headlines in each category and turns them into clear, structured analysis.",
				"Articles are drafted by language models from reputable news sources, illustrated with licensed stock photography and published with full search metadata.",
			},
		},
		{
			Heading: "Our Core Values",
			Items: []string{
				"Accuracy: we cite the sources our articles are based on.",
				"Transparency: AI involvement is disclosed on every page.",
				"Accessibility: complex topics explained in plain language.",
			},
		},
		{
			Heading:    "Get in Touch",
			Paragraphs: []string{"Questions, tips or corrections are welcome through the contact page."},
		},
	},
}

// PrivacyPage is the copy for /privacy.
var PrivacyPage = InfoPageData{
	Title:   "Privacy Policy",
	Updated: LegalUpdated,
	Sections: []InfoSection{
		{Heading: "1. Introduction", Paragraphs: []string{"This policy explains how NeuralPost collects, uses and protects information when you visit the website."}},
		{Heading: "2. Information We Collect", Items: []string{
			"Information you provide, such as the name and email address sent through the contact form.",
			"Usage data such as pages visited, browser type and referring site.",
		}},
		{Heading: "3. How We Use Your Information", Paragraphs: []string{"We use information to operate the site, answer messages, measure readership and improve content."}},
		{Heading: "4. Cookies and Tracking Technologies", Paragraphs: []string{"We and our advertising partners may use cookies to remember preferences and serve relevant ads. You can disable cookies in your browser settings."}},
		{Heading: "5. Third-Party Services", Paragraphs: []string{"Analytics and advertising providers such as Google may collect data under their own privacy policies."}},
		{Heading: "6. Data Security", Paragraphs: []string{"We use reasonable safeguards to protect stored information, but no transmission over the internet is fully secure."}},
		{Heading: "7. Your Rights", Paragraphs: []string{"You may request access to, correction of or deletion of personal information you have sent us."}},
		{Heading: "8. Children's Privacy", Paragraphs: []string{"The site is not directed at children under 13 and we do not knowingly collect their information."}},
		{Heading: "9. Changes to This Policy", Paragraphs: []string{"We may update this policy. Changes take effect when posted on this page."}},
		{Heading: "10. Contact Us", Paragraphs: []string{"Questions about this policy can be sent through the contact page."}},
	},
}

// TermsPage is the copy for /terms.
var TermsPage = InfoPageData{
	Title:   "Terms of Service",
	Updated: LegalUpdated,
	Sections: []InfoSection{
		{Heading: "1. Agreement to Terms", Paragraphs: []string{"By using NeuralPost you agree to these terms. If you do not agree, please do not use the site."}},
		{Heading: "2. Use License", Paragraphs: []string{"You may view and share content for personal, non-commercial use. Republishing full articles requires permission."}},
		{Heading: "3. Content and Intellectual Property", Paragraphs: []string{"Site design, text and branding belong to NeuralPost unless otherwise credited. Images are used under their providers' licenses."}},
		{Heading: "4. AI-Generated Content Disclaimer", Paragraphs: []string{"Articles are produced with AI assistance and may contain errors. Verify important facts with primary sources."}},
		{Heading: "5. User Conduct", Paragraphs: []string{"Do not misuse the site, attempt to disrupt it or submit unlawful content through its forms."}},
		{Heading: "6. Third-Party Links", Paragraphs: []string{"Links to other websites are provided for reference. We are not responsible for their content."}},
		{Heading: "7. Advertising", Paragraphs: []string{"The site may display ads served by third parties."}},
		{Heading: "8. Disclaimer", Paragraphs: []string{"Content is provided as is, without warranties of any kind."}},
		{Heading: "9. Limitations", Paragraphs: []string{"NeuralPost is not liable for damages arising from the use of the site or its content."}},
		{Heading: "10. Revisions", Paragraphs: []string{"We may revise these terms at any time. Continued use means you accept the current version."}},
		{Heading: "11. Governing Law", Paragraphs: []string{"These terms are governed by applicable law in the jurisdiction where NeuralPost operates."}},
		{Heading: "12. Contact Information", Paragraphs: []string{"Questions about these terms can be sent through the contact page."}},
	},
}

// DisclaimerPage is the copy for /disclaimer.
var DisclaimerPage = InfoPageData{
	Title:   "Disclaimer",
	Updated: LegalUpdated,
	Sections: []InfoSection{
		{Heading: "General Information", Paragraphs: []string{
			"Content on NeuralPost is for general informational and educational purposes only.",
			"We make no warranties about the completeness or accuracy of the information. Any reliance on it is at your own risk.",
		}},
		{Heading: "AI-Generated Content Disclosure", Items: []string{
			"Automated article generation: articles are drafted by language models from current news sources.",
			"AI-assisted research: trending topics and keywords are identified automatically.",
			"Image curation: featured images come from licensed stock photography and are selected algorithmically.",
		}},
		{Heading: "Affiliate Links & Advertising", Paragraphs: []string{"The site may contain affiliate links and third-party ads. Editorial content is not influenced by advertisers."}},
		{Heading: "Not Professional Advice", Items: []string{
			"Financial: market coverage is not investment advice.",
			"Legal: discussion of regulation is general information only.",
			"Medical: science and health coverage does not replace a professional.",
			"Technical: verify implementation decisions with qualified engineers.",
		}},
		{Heading: "External Links Disclaimer", Paragraphs: []string{"Links to external sites do not imply endorsement, and we are not responsible for their content."}},
		{Heading: "Questions About This Disclaimer?", Paragraphs: []string{"Reach us through the contact page."}},
	},
}
